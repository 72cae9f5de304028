// Package console centralizes terminal output and interactive prompts for the
// CLI, so the rest of the code never talks to pterm or color directly.
package console

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console writes user-facing messages to the terminal.
type Console struct{}

// NewConsole creates a new Console.
func NewConsole() *Console {
	return &Console{}
}

// Print prints to the console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf prints a formatted string to the console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println prints to the console with a trailing newline.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// Info prints an informational message.
func (c *Console) Info(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// Warning prints a warning message.
func (c *Console) Warning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// Error prints an error message.
func (c *Console) Error(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// Success prints a success message.
func (c *Console) Success(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// Section prints a section banner.
func (c *Console) Section(title string) {
	pterm.DefaultSection.Println(title)
}

// Confirm asks a yes/no question and returns the answer.
func (c *Console) Confirm(prompt string) bool {
	ok, _ := pterm.DefaultInteractiveConfirm.Show(prompt)
	return ok
}

// Ask prompts for a free-form text answer with an optional default.
func (c *Console) Ask(prompt, defaultValue string) string {
	input := pterm.DefaultInteractiveTextInput
	if defaultValue != "" {
		input = *input.WithDefaultValue(defaultValue)
	}
	value, err := input.Show(prompt)
	if err != nil {
		return defaultValue
	}
	return value
}

// Status starts a spinner with the given message; callers must Stop it.
type StatusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status creates a status spinner with the specified message.
func (c *Console) Status(message string) *StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &StatusHandle{spinner: spinner}
}

// Update changes the status message.
func (h *StatusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop ends the spinner.
func (h *StatusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Predefined colors for consistent use across reports and summaries.
var (
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)
