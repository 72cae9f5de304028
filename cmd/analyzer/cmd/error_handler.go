package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"sales-analytics-service/pkg/errors"
	"sales-analytics-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Error("Command failed")

	// Handle AnalyticsError with detailed information
	if analyticsErr, ok := errors.AsAnalyticsError(err); ok {
		return h.handleAnalyticsError(analyticsErr)
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handleAnalyticsError handles AnalyticsError with detailed context
func (h *CLIErrorHandler) handleAnalyticsError(err *errors.AnalyticsError) int {
	// Print the main error message
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	// Add category-specific help
	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-AnalyticsError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file
• Save the file as UTF-8, Latin-1 or Windows-1252 if decoding fails`

	case errors.CategoryParse:
		return `Parse error help:
• Each record needs exactly 8 pipe-delimited fields
• Quantity must be a whole number and unit price a decimal
• Malformed lines are dropped and counted, they do not stop the run
• Run with --verbose to see a sample of rejected lines`

	case errors.CategoryValidation:
		return `Validation error help:
• Transaction IDs start with T, product IDs with P, customer IDs with C
• Quantity and unit price must be greater than zero
• Customer ID and region cannot be empty`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check the flag values and any config file passed with --config
• Environment variables use the SALES_ prefix
• Run with --help to see the accepted flags and defaults`

	case errors.CategoryNetwork:
		return `Network error help:
• The analysis continues without metadata when the catalog is unreachable
• Check your internet connection and any proxy settings
• Use --api-base-url and --rate-url to point at different endpoints
• Use --skip-enrichment to avoid external calls entirely`

	case errors.CategoryEnrichment:
		return `Enrichment error help:
• Product IDs must contain a numeric part after the P prefix
• Unmatched records are kept with empty metadata columns
• Check the unmatched product IDs listed in the report`

	case errors.CategoryReport:
		return `Report error help:
• Check the output directory exists and is writable
• Ensure there is enough free disk space
• Try a different output path`

	default:
		return `General help:
• Run with --verbose for detailed logging
• Check the command syntax with --help`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
