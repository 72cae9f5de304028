// Package validator applies the strict filtering pass over parsed
// transactions and derives dataset profiles used to guide filter choices.
package validator

import (
	"sort"

	"sales-analytics-service/internal/models"
	"sales-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// FilterOptions control the optional narrowing applied after the strict
// identifier check. A nil bound means that side of the range is open.
type FilterOptions struct {
	// Region filters to transactions whose Region matches exactly.
	// Empty means no region filtering.
	Region string

	// MinAmount and MaxAmount bound the transaction amount inclusively.
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// FilterSummary accounts for every input transaction across the passes.
type FilterSummary struct {
	TotalInput       int `json:"total_input"`
	Invalid          int `json:"invalid"`
	FilteredByRegion int `json:"filtered_by_region"`
	FilteredByAmount int `json:"filtered_by_amount"`
	FinalCount       int `json:"final_count"`
}

// Validator runs the strict pass. It only re-checks identifier prefixes;
// numeric positivity was already enforced when the lines were parsed.
type Validator struct {
	logger logger.Logger
}

func NewValidator(log logger.Logger) *Validator {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("validator")
	}
	return &Validator{logger: log}
}

// Filter applies the strict identifier check, then the optional region and
// amount filters, in that order. Input order is preserved and the input
// slice is never modified.
func (v *Validator) Filter(transactions []*models.Transaction, opts FilterOptions) ([]*models.Transaction, *FilterSummary) {
	summary := &FilterSummary{TotalInput: len(transactions)}
	result := make([]*models.Transaction, 0, len(transactions))

	for _, tx := range transactions {
		if !tx.HasStrictPrefixes() {
			summary.Invalid++
			continue
		}
		if opts.Region != "" && tx.Region != opts.Region {
			summary.FilteredByRegion++
			continue
		}
		if !amountInRange(tx.Amount(), opts.MinAmount, opts.MaxAmount) {
			summary.FilteredByAmount++
			continue
		}
		result = append(result, tx)
	}

	summary.FinalCount = len(result)
	v.logger.WithFields(logger.Fields{
		"total_input":        summary.TotalInput,
		"invalid":            summary.Invalid,
		"filtered_by_region": summary.FilteredByRegion,
		"filtered_by_amount": summary.FilteredByAmount,
		"final_count":        summary.FinalCount,
	}).Info("Filtering completed")

	return result, summary
}

func amountInRange(amount decimal.Decimal, min, max *decimal.Decimal) bool {
	if min != nil && amount.LessThan(*min) {
		return false
	}
	if max != nil && amount.GreaterThan(*max) {
		return false
	}
	return true
}

// DataProfile summarizes the unfiltered dataset: which regions appear and
// the range of transaction amounts. Used to present filter choices before
// any narrowing happens.
type DataProfile struct {
	Regions   []string        `json:"regions"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Empty     bool            `json:"empty"`
}

// Profile computes a DataProfile over the given transactions. Regions are
// distinct and sorted. On empty input the amounts are zero and Empty is set.
func Profile(transactions []*models.Transaction) *DataProfile {
	profile := &DataProfile{Empty: len(transactions) == 0}
	if profile.Empty {
		profile.Regions = []string{}
		return profile
	}

	seen := make(map[string]struct{})
	for i, tx := range transactions {
		seen[tx.Region] = struct{}{}
		amount := tx.Amount()
		if i == 0 {
			profile.MinAmount = amount
			profile.MaxAmount = amount
			continue
		}
		if amount.LessThan(profile.MinAmount) {
			profile.MinAmount = amount
		}
		if amount.GreaterThan(profile.MaxAmount) {
			profile.MaxAmount = amount
		}
	}

	profile.Regions = make([]string, 0, len(seen))
	for region := range seen {
		profile.Regions = append(profile.Regions, region)
	}
	sort.Strings(profile.Regions)
	return profile
}
