// Package enrichment joins catalog metadata onto transactions and writes
// the enriched dataset to disk.
package enrichment

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"sales-analytics-service/internal/models"
	"sales-analytics-service/pkg/errors"
	"sales-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// enrichedHeader is the first line of the enriched output file.
const enrichedHeader = "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region|API_Category|API_Brand|API_Rating|API_Match"

// NumericProductID converts a transaction's product identifier to the
// catalog's numeric key. Exactly one leading "P" is removed; a lowercase
// "p" or any other leading character makes the identifier non-numeric and
// the lookup simply misses.
func NumericProductID(productID string) (int64, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(productID, "P"))
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Enricher joins transactions against an indexed product catalog.
type Enricher struct {
	index  map[int64]models.Product
	logger logger.Logger
}

// NewEnricher indexes the catalog by numeric product ID. A duplicate ID
// keeps the last entry, matching a plain map build.
func NewEnricher(products []models.Product, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("enrichment")
	}
	index := make(map[int64]models.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return &Enricher{index: index, logger: log}
}

// CatalogSize returns the number of indexed products.
func (e *Enricher) CatalogSize() int {
	return len(e.index)
}

// Summary describes the outcome of a join.
type Summary struct {
	Total               int      `json:"total"`
	Matched             int      `json:"matched"`
	SuccessRate         float64  `json:"success_rate"`
	UnmatchedProductIDs []string `json:"unmatched_product_ids"`
}

// Enrich joins every transaction against the catalog. Output order and
// multiplicity mirror the input exactly; an unmatched record gets nil
// metadata rather than an error. The summary's unmatched product IDs are
// distinct and sorted, and the success rate is rounded to two decimals.
func (e *Enricher) Enrich(transactions []*models.Transaction) ([]*models.EnrichedTransaction, *Summary) {
	result := make([]*models.EnrichedTransaction, 0, len(transactions))
	unmatched := make(map[string]struct{})
	matched := 0

	for _, tx := range transactions {
		enriched := &models.EnrichedTransaction{Transaction: *tx}
		if id, ok := NumericProductID(tx.ProductID); ok {
			if p, found := e.index[id]; found {
				enriched.Metadata = &models.ProductMetadata{
					Category: p.Category,
					Brand:    p.Brand,
					Rating:   p.Rating,
				}
				matched++
			} else {
				unmatched[tx.ProductID] = struct{}{}
			}
		} else {
			unmatched[tx.ProductID] = struct{}{}
		}
		result = append(result, enriched)
	}

	summary := &Summary{
		Total:               len(transactions),
		Matched:             matched,
		UnmatchedProductIDs: make([]string, 0, len(unmatched)),
	}
	for id := range unmatched {
		summary.UnmatchedProductIDs = append(summary.UnmatchedProductIDs, id)
	}
	sort.Strings(summary.UnmatchedProductIDs)

	if summary.Total > 0 {
		rate := float64(matched) / float64(summary.Total) * 100
		summary.SuccessRate, _ = decimal.NewFromFloat(rate).Round(2).Float64()
	}

	e.logger.WithFields(logger.Fields{
		"total":     summary.Total,
		"matched":   summary.Matched,
		"unmatched": len(summary.UnmatchedProductIDs),
	}).Info("Enrichment completed")

	return result, summary
}

// FormatRecord renders one enriched transaction as a pipe-delimited line.
// Metadata columns are empty when the record is unmatched; the match flag
// is always present as true or false.
func FormatRecord(e *models.EnrichedTransaction) string {
	category, brand, rating := "", "", ""
	if e.Metadata != nil {
		category = e.Metadata.Category
		brand = e.Metadata.Brand
		rating = strconv.FormatFloat(e.Metadata.Rating, 'g', -1, 64)
	}
	return strings.Join([]string{
		e.TransactionID,
		e.Date,
		e.ProductID,
		e.ProductName,
		strconv.FormatInt(e.Quantity, 10),
		e.UnitPrice.String(),
		e.CustomerID,
		e.Region,
		category,
		brand,
		rating,
		strconv.FormatBool(e.APIMatch()),
	}, "|")
}

// WriteFile writes the enriched dataset with its header line. The write is
// all or nothing: on error no partial file semantics are promised and the
// error carries the path.
func WriteFile(path string, enriched []*models.EnrichedTransaction) error {
	var b strings.Builder
	b.WriteString(enrichedHeader)
	b.WriteString("\n")
	for _, e := range enriched {
		b.WriteString(FormatRecord(e))
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.ReportError(errors.CodeWriteFailed, path,
			fmt.Errorf("writing enriched dataset: %w", err))
	}
	return nil
}
