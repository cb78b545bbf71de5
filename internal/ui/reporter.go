package ui

import (
	"fmt"
	"io"
	"os"
)

const (
	prefixedLineTemplateConstant = "%s %s\n"
	detailLineTemplateConstant   = "  %s\n"
	plainLineTemplateConstant    = "%s\n"
)

// Reporter writes styled status lines. Errors and warnings go to the error stream.
type Reporter struct {
	output      io.Writer
	errorOutput io.Writer
}

// NewReporter constructs a Reporter. Nil writers default to the process streams.
func NewReporter(output io.Writer, errorOutput io.Writer) *Reporter {
	if output == nil {
		output = os.Stdout
	}
	if errorOutput == nil {
		errorOutput = os.Stderr
	}
	return &Reporter{output: output, errorOutput: errorOutput}
}

// Output exposes the standard stream for callers that render their own content.
func (reporter *Reporter) Output() io.Writer {
	return reporter.output
}

// Success reports a completed step.
func (reporter *Reporter) Success(format string, arguments ...any) {
	fmt.Fprintf(reporter.output, prefixedLineTemplateConstant, SuccessPrefix, fmt.Sprintf(format, arguments...))
}

// Warning reports a best-effort step that did not complete.
func (reporter *Reporter) Warning(format string, arguments ...any) {
	fmt.Fprintf(reporter.errorOutput, prefixedLineTemplateConstant, WarningPrefix, WarningStyle.Render(fmt.Sprintf(format, arguments...)))
}

// Error reports a failure.
func (reporter *Reporter) Error(format string, arguments ...any) {
	fmt.Fprintf(reporter.errorOutput, prefixedLineTemplateConstant, ErrorPrefix, ErrorStyle.Render(fmt.Sprintf(format, arguments...)))
}

// Hint reports a suggested next step.
func (reporter *Reporter) Hint(format string, arguments ...any) {
	fmt.Fprintf(reporter.output, prefixedLineTemplateConstant, ArrowPrefix, InfoStyle.Render(fmt.Sprintf(format, arguments...)))
}

// Detail reports an indented secondary line.
func (reporter *Reporter) Detail(format string, arguments ...any) {
	fmt.Fprintf(reporter.output, detailLineTemplateConstant, DimStyle.Render(fmt.Sprintf(format, arguments...)))
}

// Line writes an unstyled line.
func (reporter *Reporter) Line(format string, arguments ...any) {
	fmt.Fprintf(reporter.output, plainLineTemplateConstant, fmt.Sprintf(format, arguments...))
}
