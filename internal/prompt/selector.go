package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/temirov/gitid/internal/ui"
)

const (
	noOptionsMessageConstant           = "no options to select from"
	selectionCancelledMessageConstant  = "selection cancelled"
	unexpectedSelectorModelMessage     = "selector finished with an unexpected model"
	selectorCursorConstant             = "❯ "
	selectorPaddingConstant            = "  "
	selectorHelpConstant               = "↑/↓ move • enter select • esc cancel"
	fallbackOptionTemplateConstant     = "  %d) %s\n"
	fallbackQuestionConstant           = "Enter a number:"
	fallbackRangeErrorTemplateConstant = "enter a number between 1 and %d"
	newlineConstant                    = "\n"
	upKeyConstant                      = "up"
	upAlternateKeyConstant             = "k"
	downKeyConstant                    = "down"
	downAlternateKeyConstant           = "j"
	chooseKeyConstant                  = "enter"
	cancelKeyConstant                  = "esc"
	cancelAlternateKeyConstant         = "ctrl+c"
	cancelShortKeyConstant             = "q"
)

// ErrNoOptions indicates Select was called with an empty option list.
var ErrNoOptions = errors.New(noOptionsMessageConstant)

// ErrSelectionCancelled indicates the user dismissed the selector.
var ErrSelectionCancelled = errors.New(selectionCancelledMessageConstant)

// SelectOption is one selectable entry.
type SelectOption struct {
	Label string
	Value string
}

// SelectorOptions configures a Selector.
type SelectorOptions struct {
	Input       io.Reader
	Output      io.Writer
	Interactive bool
}

// Selector lets the user pick one option, using a keyboard-driven list on terminals
// and a numbered menu otherwise.
type Selector struct {
	input       io.Reader
	output      io.Writer
	interactive bool
}

// NewSelector constructs a Selector.
func NewSelector(options SelectorOptions) *Selector {
	output := options.Output
	if output == nil {
		output = io.Discard
	}
	return &Selector{input: options.Input, output: output, interactive: options.Interactive}
}

// Select presents the options under title and returns the chosen one.
func (selector *Selector) Select(title string, options []SelectOption) (SelectOption, error) {
	if len(options) == 0 {
		return SelectOption{}, ErrNoOptions
	}
	if selector.interactive {
		return selector.selectInteractively(title, options)
	}
	return selector.selectFromMenu(title, options)
}

func (selector *Selector) selectInteractively(title string, options []SelectOption) (SelectOption, error) {
	program := tea.NewProgram(
		newSelectorModel(title, options),
		tea.WithInput(selector.input),
		tea.WithOutput(selector.output),
	)
	finalModel, runError := program.Run()
	if runError != nil {
		return SelectOption{}, runError
	}
	model, ok := finalModel.(selectorModel)
	if !ok {
		return SelectOption{}, errors.New(unexpectedSelectorModelMessage)
	}
	return model.result()
}

func (selector *Selector) selectFromMenu(title string, options []SelectOption) (SelectOption, error) {
	fmt.Fprintln(selector.output, title)
	for optionIndex, option := range options {
		fmt.Fprintf(selector.output, fallbackOptionTemplateConstant, optionIndex+1, option.Label)
	}

	prompter := NewLinePrompter(selector.input, selector.output)
	response, inputError := prompter.Input(fallbackQuestionConstant, "", func(value string) error {
		selectedNumber, parseError := strconv.Atoi(value)
		if parseError != nil || selectedNumber < 1 || selectedNumber > len(options) {
			return fmt.Errorf(fallbackRangeErrorTemplateConstant, len(options))
		}
		return nil
	})
	if inputError != nil {
		return SelectOption{}, inputError
	}
	selectedNumber, _ := strconv.Atoi(response)
	return options[selectedNumber-1], nil
}

type selectorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

func newSelectorKeyMap() selectorKeyMap {
	return selectorKeyMap{
		Up:     key.NewBinding(key.WithKeys(upKeyConstant, upAlternateKeyConstant)),
		Down:   key.NewBinding(key.WithKeys(downKeyConstant, downAlternateKeyConstant)),
		Choose: key.NewBinding(key.WithKeys(chooseKeyConstant)),
		Cancel: key.NewBinding(key.WithKeys(cancelKeyConstant, cancelAlternateKeyConstant, cancelShortKeyConstant)),
	}
}

type selectorModel struct {
	title     string
	options   []SelectOption
	cursor    int
	chosen    bool
	cancelled bool
	keys      selectorKeyMap
}

func newSelectorModel(title string, options []SelectOption) selectorModel {
	return selectorModel{title: title, options: options, keys: newSelectorKeyMap()}
}

// Init satisfies tea.Model.
func (model selectorModel) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model.
func (model selectorModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, ok := message.(tea.KeyMsg)
	if !ok {
		return model, nil
	}

	switch {
	case key.Matches(keyMessage, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		} else {
			model.cursor = len(model.options) - 1
		}
	case key.Matches(keyMessage, model.keys.Down):
		model.cursor = (model.cursor + 1) % len(model.options)
	case key.Matches(keyMessage, model.keys.Choose):
		model.chosen = true
		return model, tea.Quit
	case key.Matches(keyMessage, model.keys.Cancel):
		model.cancelled = true
		return model, tea.Quit
	}
	return model, nil
}

// View satisfies tea.Model.
func (model selectorModel) View() string {
	if model.chosen || model.cancelled {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(ui.BoldStyle.Render(model.title))
	builder.WriteString(newlineConstant)
	for optionIndex, option := range model.options {
		if optionIndex == model.cursor {
			builder.WriteString(ui.InfoStyle.Render(selectorCursorConstant + option.Label))
		} else {
			builder.WriteString(selectorPaddingConstant + option.Label)
		}
		builder.WriteString(newlineConstant)
	}
	builder.WriteString(ui.DimStyle.Render(selectorHelpConstant))
	builder.WriteString(newlineConstant)
	return builder.String()
}

func (model selectorModel) result() (SelectOption, error) {
	if !model.chosen {
		return SelectOption{}, ErrSelectionCancelled
	}
	return model.options[model.cursor], nil
}

var _ tea.Model = selectorModel{}
