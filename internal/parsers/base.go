// Package parsers implements the cleaning pass over the raw sales log: an
// encoding-tolerant line reader plus per-line parsing and lenient validation.
//
// The input format is a pipe-delimited text file whose first line is a header:
//
//	TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
//	T001|2024-01-05|P101|Widget|10|25.50|C001|North
//
// Real exports of this feed arrive in more than one character encoding, so the
// reader attempts UTF-8, Latin-1 and Windows-1252 in that fixed order before
// giving up. Malformed lines are never errors; they are counted and dropped.
package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"sales-analytics-service/pkg/errors"
	"sales-analytics-service/pkg/logger"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// encodingAttempt pairs a name with a decoder, tried in declaration order.
type encodingAttempt struct {
	name    string
	decoder *encoding.Decoder
}

func supportedEncodings() []encodingAttempt {
	return []encodingAttempt{
		{"utf-8", unicode.UTF8.NewDecoder()},
		{"latin-1", charmap.ISO8859_1.NewDecoder()},
		{"windows-1252", charmap.Windows1252.NewDecoder()},
	}
}

// ReadConfig holds configuration for reading the raw sales file.
type ReadConfig struct {
	HasHeader      bool
	SkipBlankLines bool
}

// DefaultReadConfig returns a configuration matching the standard feed layout.
func DefaultReadConfig() *ReadConfig {
	return &ReadConfig{
		HasHeader:      true,
		SkipBlankLines: true,
	}
}

// FileReader reads raw data lines from a sales log file.
type FileReader struct {
	config *ReadConfig
	logger logger.Logger
}

// NewFileReader creates a FileReader with the given configuration.
func NewFileReader(config *ReadConfig) *FileReader {
	if config == nil {
		config = DefaultReadConfig()
	}
	return &FileReader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("file_reader"),
	}
}

// ReadLines returns the trimmed data lines of the file, header discarded and
// blank lines removed. A missing file and an undecodable file are distinct
// error conditions; callers are expected to report either and continue with
// an empty record set.
func (fr *FileReader) ReadLines(path string) ([]string, error) {
	fr.logger.WithField("file_path", path).Debug("Reading sales data file")

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeEncodingError, path, err)
	}

	text, encodingName, err := decodeWithFallback(raw)
	if err != nil {
		return nil, errors.FileError(errors.CodeEncodingError, path, err)
	}

	lines := splitDataLines(text, fr.config)

	fr.logger.WithFields(logger.Fields{
		"file_path":  path,
		"encoding":   encodingName,
		"data_lines": len(lines),
	}).Info("Read sales data file")

	return lines, nil
}

// decodeWithFallback tries each supported encoding in order and returns the
// decoded text plus the name of the encoding that succeeded.
func decodeWithFallback(raw []byte) (string, string, error) {
	for _, attempt := range supportedEncodings() {
		// A UTF-8 validity check is stricter than the decoder, which would
		// silently substitute replacement runes.
		if attempt.name == "utf-8" {
			if utf8.Valid(raw) {
				return string(raw), attempt.name, nil
			}
			continue
		}

		decoded, err := attempt.decoder.Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), attempt.name, nil
	}
	return "", "", fmt.Errorf("no supported encoding could decode the file")
}

// splitDataLines splits decoded text into trimmed data lines.
func splitDataLines(text string, config *ReadConfig) []string {
	scanner := bufio.NewScanner(bytes.NewReader([]byte(text)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first && config.HasHeader {
			first = false
			continue
		}
		first = false
		if config.SkipBlankLines && line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// RejectedLine records why a raw line failed the cleaning pass.
type RejectedLine struct {
	Line   int
	Reason string
}

func (r RejectedLine) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}

// ParseStats holds statistics about a cleaning pass.
type ParseStats struct {
	TotalParsed int
	Invalid     int
	Valid       int
	Rejected    []RejectedLine
}

// NewParseStats creates a new ParseStats instance.
func NewParseStats() *ParseStats {
	return &ParseStats{}
}

// AddReject counts a rejected line with its reason.
func (ps *ParseStats) AddReject(line int, reason string) {
	ps.Invalid++
	ps.Rejected = append(ps.Rejected, RejectedLine{Line: line, Reason: reason})
}

// HasRejects returns true if any lines were rejected.
func (ps *ParseStats) HasRejects() bool {
	return ps.Invalid > 0
}

// SampleRejects returns up to max reject descriptions for logging.
func (ps *ParseStats) SampleRejects(max int) []string {
	if len(ps.Rejected) == 0 {
		return nil
	}
	limit := len(ps.Rejected)
	if max > 0 && max < limit {
		limit = max
	}
	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Rejected[i].String())
	}
	return samples
}

// String returns a human-readable summary of the cleaning pass.
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d valid, %d invalid",
		ps.TotalParsed, ps.Valid, ps.Invalid)
}
