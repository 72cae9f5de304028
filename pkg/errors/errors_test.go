package errors

import (
	"errors"
	"testing"
)

func TestAnalyticsError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeFieldCount,
			message:    "wrong field count",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "validation error",
			category:   CategoryValidation,
			code:       CodeInvalidPrefix,
			message:    "bad prefix",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "network error",
			category:   CategoryNetwork,
			code:       CodeTimeout,
			message:    "timed out",
			cause:      errors.New("deadline exceeded"),
			expectCode: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *AnalyticsError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
		})
	}
}

func TestAnalyticsErrorWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "data/sales_data.txt").
		WithContext("line", 42).
		WithSuggestion("check file path")

	if err.Context["file"] != "data/sales_data.txt" {
		t.Errorf("expected file context 'data/sales_data.txt', got %v", err.Context["file"])
	}
	if err.Context["line"] != 42 {
		t.Errorf("expected line context 42, got %v", err.Context["line"])
	}
	if err.Suggestion != "check file path" {
		t.Errorf("expected suggestion 'check file path', got %s", err.Suggestion)
	}

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected error string '%s', got '%s'", expected, err.Error())
	}
}

func TestSpecificErrorConstructors(t *testing.T) {
	t.Run("FileError", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := FileError(CodeFilePermission, "data/sales_data.txt", cause)

		if err.Category != CategoryFile {
			t.Errorf("expected file category, got %s", err.Category)
		}
		if err.Context["file_path"] != "data/sales_data.txt" {
			t.Errorf("expected file_path context, got %v", err.Context["file_path"])
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		err := ParseError(CodeInvalidNumber, "sales.txt", 7, "abc", nil)

		if err.Category != CategoryParse {
			t.Errorf("expected parse category, got %s", err.Category)
		}
		if err.Context["line"] != 7 {
			t.Errorf("expected line 7, got %v", err.Context["line"])
		}
		if err.Context["value"] != "abc" {
			t.Errorf("expected value 'abc', got %v", err.Context["value"])
		}
	})

	t.Run("EnrichmentError", func(t *testing.T) {
		err := EnrichmentError(CodeNoProductID, "PXYZ", nil)

		if err.Category != CategoryEnrichment {
			t.Errorf("expected enrichment category, got %s", err.Category)
		}
		if err.Context["detail"] != "PXYZ" {
			t.Errorf("expected detail 'PXYZ', got %v", err.Context["detail"])
		}
	})

	t.Run("NetworkError", func(t *testing.T) {
		err := NetworkError(CodeBadStatus, "https://dummyjson.com/products", nil)

		if err.Category != CategoryNetwork {
			t.Errorf("expected network category, got %s", err.Category)
		}
		if err.GetExitCode() != 6 {
			t.Errorf("expected exit code 6, got %d", err.GetExitCode())
		}
	})
}

func TestErrorSummary(t *testing.T) {
	errs := []*AnalyticsError{
		New(CategoryParse, CodeFieldCount, "short line"),
		New(CategoryParse, CodeInvalidNumber, "bad quantity"),
		New(CategoryNetwork, CodeTimeout, "catalog timeout"),
	}

	summary := NewErrorSummary(errs)

	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
	if summary.ByCategory[CategoryParse] != 2 {
		t.Errorf("expected 2 parse errors, got %d", summary.ByCategory[CategoryParse])
	}
	if !summary.HasCategory(CategoryNetwork) {
		t.Error("expected network category to be present")
	}
	if summary.GetExitCode() != 6 {
		t.Errorf("expected exit code 6 (network dominates), got %d", summary.GetExitCode())
	}
}

func TestErrorSummaryEmpty(t *testing.T) {
	summary := NewErrorSummary(nil)

	if summary.Total != 0 {
		t.Errorf("expected total 0, got %d", summary.Total)
	}
	if summary.Error() != "no errors" {
		t.Errorf("expected 'no errors', got %s", summary.Error())
	}
	if summary.GetExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", summary.GetExitCode())
	}
}

func TestAsAnalyticsError(t *testing.T) {
	base := New(CategoryFile, CodeFileNotFound, "missing")

	extracted, ok := AsAnalyticsError(base)
	if !ok || extracted != base {
		t.Error("expected to extract the original error")
	}

	if _, ok := AsAnalyticsError(errors.New("plain")); ok {
		t.Error("plain error should not extract as AnalyticsError")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	original := New(CategoryParse, CodeFieldCount, "already wrapped")
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "ignored"); got != original {
		t.Error("expected existing AnalyticsError to pass through unchanged")
	}

	plain := errors.New("plain")
	wrapped := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped now")
	if wrapped.Category != CategoryInternal || wrapped.Cause != plain {
		t.Error("expected plain error to be wrapped with internal category")
	}

	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "nil") != nil {
		t.Error("expected nil for nil input")
	}
}
