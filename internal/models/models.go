package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction represents a cleaned sales transaction record.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	Date          string          `json:"date"`
	ProductID     string          `json:"productID"`
	ProductName   string          `json:"productName"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CustomerID    string          `json:"customerID"`
	Region        string          `json:"region"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(id, date, productID, productName string, quantity int64, unitPrice decimal.Decimal, customerID, region string) *Transaction {
	return &Transaction{
		TransactionID: id,
		Date:          date,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    customerID,
		Region:        region,
	}
}

// Amount returns the transaction value. It is always derived, never stored.
func (t *Transaction) Amount() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(t.Quantity))
}

// Validate applies the cleaning rule set: transaction id prefix, positive
// quantity and price, non-empty customer and region.
func (t *Transaction) Validate() error {
	if !strings.HasPrefix(t.TransactionID, "T") {
		return fmt.Errorf("transaction ID must start with 'T': %q", t.TransactionID)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than zero: %d", t.Quantity)
	}
	if !t.UnitPrice.IsPositive() {
		return fmt.Errorf("unit price must be greater than zero: %s", t.UnitPrice)
	}
	if strings.TrimSpace(t.CustomerID) == "" {
		return fmt.Errorf("customer ID cannot be empty")
	}
	if strings.TrimSpace(t.Region) == "" {
		return fmt.Errorf("region cannot be empty")
	}
	return nil
}

// HasStrictPrefixes reports whether the record satisfies the stricter
// identifier rule set used by the filter pass. It deliberately rechecks
// nothing the cleaning pass already enforced.
func (t *Transaction) HasStrictPrefixes() bool {
	return strings.HasPrefix(t.TransactionID, "T") &&
		strings.HasPrefix(t.ProductID, "P") &&
		strings.HasPrefix(t.CustomerID, "C")
}

// Clone returns a copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	return &cp
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}
	return t.TransactionID == other.TransactionID &&
		t.Date == other.Date &&
		t.ProductID == other.ProductID &&
		t.ProductName == other.ProductName &&
		t.Quantity == other.Quantity &&
		t.UnitPrice.Equal(other.UnitPrice) &&
		t.CustomerID == other.CustomerID &&
		t.Region == other.Region
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Product: %s, Qty: %d, Price: %s, Customer: %s, Region: %s}",
		t.TransactionID, t.Date, t.ProductName, t.Quantity, t.UnitPrice.String(), t.CustomerID, t.Region)
}

// ProductMetadata holds the catalog fields copied onto a matched record.
// The three fields are always populated together.
type ProductMetadata struct {
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Rating   float64 `json:"rating"`
}

// EnrichedTransaction is a Transaction plus optional catalog metadata.
// Metadata is nil exactly when the catalog lookup found no match, which keeps
// the all-or-nothing invariant structural rather than conventional.
type EnrichedTransaction struct {
	Transaction
	Metadata *ProductMetadata `json:"metadata,omitempty"`
}

// APIMatch reports whether catalog metadata was joined onto this record.
func (e *EnrichedTransaction) APIMatch() bool {
	return e.Metadata != nil
}

// Product represents one entry from the external product catalog.
type Product struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// Utility functions for field cleaning and conversion

// CleanProductName strips commas from a product name. Commas in the source
// field are a formatting artifact, not a delimiter or a distinct product.
func CleanProductName(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// ParseQuantity parses an integer quantity, tolerating thousand separators.
func ParseQuantity(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("quantity string cannot be empty")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return n, nil
}

// ParseUnitPrice parses a decimal price, tolerating currency symbols and
// thousand separators.
func ParseUnitPrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("price string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}

// NewTransactionFromRecord creates a Transaction from the 8 pipe-delimited
// fields of a raw line, in file order. It cleans formatting artifacts and
// parses numerics but does not apply the cleaning validation rule set;
// callers run Validate separately so rejects can be counted.
func NewTransactionFromRecord(fields []string) (*Transaction, error) {
	if len(fields) != 8 {
		return nil, fmt.Errorf("expected 8 fields, got %d", len(fields))
	}

	quantity, err := ParseQuantity(fields[4])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity field: %w", err)
	}

	unitPrice, err := ParseUnitPrice(fields[5])
	if err != nil {
		return nil, fmt.Errorf("invalid unit price field: %w", err)
	}

	return NewTransaction(
		fields[0],
		fields[1],
		fields[2],
		CleanProductName(fields[3]),
		quantity,
		unitPrice,
		fields[6],
		fields[7],
	), nil
}
