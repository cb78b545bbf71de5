package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	inputClosedMessageConstant           = "input closed before a value was provided"
	inputLabelTemplateConstant           = "%s "
	inputDefaultLabelTemplateConstant    = "%s [%s] "
	confirmDefaultYesSuffixConstant      = "[Y/n]"
	confirmDefaultNoSuffixConstant       = "[y/N]"
	confirmLabelTemplateConstant         = "%s %s "
	validationFailureTemplateConstant    = "  %v\n"
	affirmativeShortResponseConstant     = "y"
	affirmativeLongResponseConstant      = "yes"
	negativeShortResponseConstant        = "n"
	negativeLongResponseConstant         = "no"
	responseDelimiterConstant            = '\n'
	emptyResponseConstant                = ""
	requiredValueMessageTemplateConstant = "%s is required"
)

// ErrInputClosed indicates the input stream ended while a value was still required.
var ErrInputClosed = errors.New(inputClosedMessageConstant)

// Validator rejects an entered value by returning an error describing the problem.
type Validator func(value string) error

// LinePrompter reads answers line by line from an io.Reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter constructs a prompter from the provided reader and writer.
func NewLinePrompter(input io.Reader, output io.Writer) *LinePrompter {
	if output == nil {
		output = io.Discard
	}
	return &LinePrompter{reader: bufio.NewReader(input), writer: output}
}

// Input asks for a value and repeats the question until the validator accepts the answer.
// An empty answer selects defaultValue when one is provided.
func (prompter *LinePrompter) Input(label string, defaultValue string, validator Validator) (string, error) {
	for {
		question := fmt.Sprintf(inputLabelTemplateConstant, label)
		if len(defaultValue) > 0 {
			question = fmt.Sprintf(inputDefaultLabelTemplateConstant, label, defaultValue)
		}
		if _, writeError := io.WriteString(prompter.writer, question); writeError != nil {
			return emptyResponseConstant, writeError
		}

		response, closed, readError := prompter.readLine()
		if readError != nil {
			return emptyResponseConstant, readError
		}
		if len(response) == 0 {
			response = defaultValue
		}

		var validationError error
		if validator != nil {
			validationError = validator(response)
		}
		if validationError == nil {
			return response, nil
		}
		if closed {
			return emptyResponseConstant, fmt.Errorf("%w: %v", ErrInputClosed, validationError)
		}
		fmt.Fprintf(prompter.writer, validationFailureTemplateConstant, validationError)
	}
}

// Confirm asks a yes/no question. An empty answer selects defaultValue.
func (prompter *LinePrompter) Confirm(label string, defaultValue bool) (bool, error) {
	suffix := confirmDefaultNoSuffixConstant
	if defaultValue {
		suffix = confirmDefaultYesSuffixConstant
	}
	if _, writeError := fmt.Fprintf(prompter.writer, confirmLabelTemplateConstant, label, suffix); writeError != nil {
		return false, writeError
	}

	response, _, readError := prompter.readLine()
	if readError != nil {
		return false, readError
	}

	switch strings.ToLower(response) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	case negativeShortResponseConstant, negativeLongResponseConstant:
		return false, nil
	default:
		return defaultValue, nil
	}
}

func (prompter *LinePrompter) readLine() (string, bool, error) {
	response, readError := prompter.reader.ReadString(responseDelimiterConstant)
	if readError != nil && !errors.Is(readError, io.EOF) {
		return emptyResponseConstant, false, readError
	}
	return strings.TrimSpace(response), readError != nil, nil
}

// Required returns a Validator that rejects blank values, naming the field in the error.
func Required(fieldName string) Validator {
	return func(value string) error {
		if len(strings.TrimSpace(value)) == 0 {
			return fmt.Errorf(requiredValueMessageTemplateConstant, fieldName)
		}
		return nil
	}
}

// All combines validators, returning the first failure.
func All(validators ...Validator) Validator {
	return func(value string) error {
		for _, validator := range validators {
			if validator == nil {
				continue
			}
			if validationError := validator(value); validationError != nil {
				return validationError
			}
		}
		return nil
	}
}
