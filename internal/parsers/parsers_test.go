package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"sales-analytics-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

const sampleHeader = "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region\n"

func TestFileReader_ReadLines(t *testing.T) {
	t.Run("skips header and blank lines", func(t *testing.T) {
		content := sampleHeader +
			"T001|2024-01-05|P101|Widget|10|25.50|C001|North\n" +
			"\n" +
			"   \n" +
			"T002|2024-01-06|P102|Gadget|5|10.00|C002|South\n"
		path := writeTempFile(t, "sales.txt", []byte(content))

		lines, err := NewFileReader(nil).ReadLines(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 data lines, got %d", len(lines))
		}
		if lines[0] != "T001|2024-01-05|P101|Widget|10|25.50|C001|North" {
			t.Errorf("unexpected first line: %q", lines[0])
		}
	})

	t.Run("missing file is a distinct condition", func(t *testing.T) {
		_, err := NewFileReader(nil).ReadLines(filepath.Join(t.TempDir(), "nope.txt"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		analyticsErr, ok := errors.AsAnalyticsError(err)
		if !ok {
			t.Fatalf("expected AnalyticsError, got %T", err)
		}
		if analyticsErr.Code != errors.CodeFileNotFound {
			t.Errorf("expected code %s, got %s", errors.CodeFileNotFound, analyticsErr.Code)
		}
	})

	t.Run("latin-1 bytes decode via fallback", func(t *testing.T) {
		// 0xE9 is 'é' in Latin-1 but invalid UTF-8.
		content := append([]byte(sampleHeader), []byte("T001|2024-01-05|P101|Caf")...)
		content = append(content, 0xE9)
		content = append(content, []byte("|10|25.50|C001|North\n")...)
		path := writeTempFile(t, "latin1.txt", content)

		lines, err := NewFileReader(nil).ReadLines(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("expected 1 data line, got %d", len(lines))
		}
		if lines[0] != "T001|2024-01-05|P101|Café|10|25.50|C001|North" {
			t.Errorf("unexpected decoded line: %q", lines[0])
		}
	})
}

func TestSalesParser_ParseLines(t *testing.T) {
	parser, err := NewSalesParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	t.Run("valid line produces a transaction", func(t *testing.T) {
		txs, stats := parser.ParseLines([]string{
			"T001|2024-01-05|P101|Widget|10|25.50|C001|North",
		})

		if stats.Valid != 1 || stats.Invalid != 0 {
			t.Fatalf("stats = %s", stats)
		}
		tx := txs[0]
		if tx.TransactionID != "T001" || tx.Date != "2024-01-05" ||
			tx.ProductID != "P101" || tx.ProductName != "Widget" ||
			tx.Quantity != 10 || tx.CustomerID != "C001" || tx.Region != "North" {
			t.Errorf("unexpected transaction: %s", tx)
		}
		if !tx.UnitPrice.Equal(decimal.RequireFromString("25.5")) {
			t.Errorf("UnitPrice = %s, want 25.5", tx.UnitPrice)
		}
		if !tx.Amount().Equal(decimal.RequireFromString("255.00")) {
			t.Errorf("Amount = %s, want 255.00", tx.Amount())
		}
	})

	t.Run("rejections count in a single invalid counter", func(t *testing.T) {
		_, stats := parser.ParseLines([]string{
			"T001|2024-01-05|P101|Widget|10|25.50|C001|North", // valid
			"T002|2024-01-05|P102|Short|5|9.99",               // too few fields
			"T003|2024-01-05|P103|Gadget|zero|9.99|C003|East", // bad quantity
			"T004|2024-01-05|P104|Thing|5|cheap|C004|East",    // bad price
			"T005|2024-01-05|P105|Item|0|9.99|C005|East",      // zero quantity
			"X006|2024-01-05|P106|Item|5|9.99|C006|East",      // bad prefix
			"T007|2024-01-05|P107|Item|5|9.99||East",          // empty customer
			"T008|2024-01-05|P108|Item|5|9.99|C008|  ",        // blank region
		})

		if stats.TotalParsed != 8 {
			t.Errorf("TotalParsed = %d, want 8", stats.TotalParsed)
		}
		if stats.Valid != 1 {
			t.Errorf("Valid = %d, want 1", stats.Valid)
		}
		if stats.Invalid != 7 {
			t.Errorf("Invalid = %d, want 7", stats.Invalid)
		}
	})

	t.Run("too many fields is invalid", func(t *testing.T) {
		_, stats := parser.ParseLines([]string{
			"T001|2024-01-05|P101|Widget|10|25.50|C001|North|extra",
		})
		if stats.Invalid != 1 {
			t.Errorf("Invalid = %d, want 1", stats.Invalid)
		}
	})

	t.Run("comma formatted numerics are cleaned", func(t *testing.T) {
		txs, stats := parser.ParseLines([]string{
			"T001|2024-01-05|P101|Widget, Deluxe|1,000|1,250.00|C001|North",
		})
		if stats.Valid != 1 {
			t.Fatalf("stats = %s", stats)
		}
		if txs[0].ProductName != "Widget Deluxe" {
			t.Errorf("ProductName = %q", txs[0].ProductName)
		}
		if txs[0].Quantity != 1000 {
			t.Errorf("Quantity = %d, want 1000", txs[0].Quantity)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		txs, stats := parser.ParseLines(nil)
		if len(txs) != 0 || stats.TotalParsed != 0 {
			t.Errorf("expected empty result, got %d transactions", len(txs))
		}
	})

	t.Run("order is preserved", func(t *testing.T) {
		txs, _ := parser.ParseLines([]string{
			"T003|2024-01-07|P103|C|1|1.00|C003|North",
			"T001|2024-01-05|P101|A|1|1.00|C001|North",
			"T002|2024-01-06|P102|B|1|1.00|C002|North",
		})
		got := []string{txs[0].TransactionID, txs[1].TransactionID, txs[2].TransactionID}
		want := []string{"T003", "T001", "T002"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestSalesParser_ParseFile(t *testing.T) {
	parser, err := NewSalesParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	content := sampleHeader +
		"T001|2024-01-05|P101|Widget|10|25.50|C001|North\n" +
		"T002|2024-01-05|P102|Gadget|0|25.50|C002|North\n"
	path := writeTempFile(t, "sales.txt", []byte(content))

	txs, stats, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(txs))
	}
	if stats.Invalid != 1 {
		t.Errorf("Invalid = %d, want 1", stats.Invalid)
	}
}
