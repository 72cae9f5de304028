package parsers

import (
	"fmt"
	"strings"

	"sales-analytics-service/internal/models"
	"sales-analytics-service/pkg/logger"
)

const fieldsPerRecord = 8

// SalesParserConfig holds configuration for the cleaning pass.
type SalesParserConfig struct {
	Delimiter string
	Read      *ReadConfig
}

// DefaultSalesParserConfig returns the standard pipe-delimited configuration.
func DefaultSalesParserConfig() *SalesParserConfig {
	return &SalesParserConfig{
		Delimiter: "|",
		Read:      DefaultReadConfig(),
	}
}

// Validate validates the parser configuration.
func (c *SalesParserConfig) Validate() error {
	if c.Delimiter == "" {
		return fmt.Errorf("delimiter cannot be empty")
	}
	return nil
}

// SalesParser performs the cleaning pass: it turns raw delimited lines into
// validated Transactions, counting every rejection in a single invalid
// counter.
type SalesParser struct {
	config *SalesParserConfig
	reader *FileReader
	logger logger.Logger
}

// NewSalesParser creates a SalesParser with the given configuration.
func NewSalesParser(config *SalesParserConfig) (*SalesParser, error) {
	if config == nil {
		config = DefaultSalesParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SalesParser{
		config: config,
		reader: NewFileReader(config.Read),
		logger: logger.GetGlobalLogger().WithComponent("sales_parser"),
	}, nil
}

// ParseFile reads and cleans a sales log file. File-level failures (missing
// file, undecodable content) are returned as errors for the caller to report;
// record-level failures are counted in the returned stats.
func (sp *SalesParser) ParseFile(path string) ([]*models.Transaction, *ParseStats, error) {
	lines, err := sp.reader.ReadLines(path)
	if err != nil {
		return nil, NewParseStats(), err
	}
	transactions, stats := sp.ParseLines(lines)
	return transactions, stats, nil
}

// ParseLines cleans raw data lines into Transactions, preserving file order.
// A line is rejected, never raised, when it has the wrong field count, a
// non-numeric quantity or price, or fails the cleaning rule set.
func (sp *SalesParser) ParseLines(lines []string) ([]*models.Transaction, *ParseStats) {
	stats := NewParseStats()
	stats.TotalParsed = len(lines)

	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "cleaning pass",
		Total:     int64(len(lines)),
		Logger:    sp.logger,
	})

	var transactions []*models.Transaction
	for i, line := range lines {
		lineNo := i + 1
		progress.Increment()

		fields := strings.Split(line, sp.config.Delimiter)
		if len(fields) != fieldsPerRecord {
			stats.AddReject(lineNo, fmt.Sprintf("expected %d fields, got %d", fieldsPerRecord, len(fields)))
			continue
		}

		tx, err := models.NewTransactionFromRecord(fields)
		if err != nil {
			stats.AddReject(lineNo, err.Error())
			continue
		}

		if err := tx.Validate(); err != nil {
			stats.AddReject(lineNo, err.Error())
			continue
		}

		transactions = append(transactions, tx)
		stats.Valid++
	}
	progress.Complete()

	sp.logger.WithFields(logger.Fields{
		"total_parsed": stats.TotalParsed,
		"valid":        stats.Valid,
		"invalid":      stats.Invalid,
	}).Info("Cleaning pass completed")

	if stats.HasRejects() {
		sp.logger.WithField("sample_rejects", stats.SampleRejects(3)).Warn("Some lines were rejected during cleaning")
	}

	return transactions, stats
}
