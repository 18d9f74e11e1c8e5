// Package source discovers and parses bank CSV exports.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cardperks/internal/model"
)

var requiredColumns = []string{ColTransactionDate, ColPostDate, ColAmount}

// ParseFile reads one CSV export. Every row is kept, including exact
// repeats; rows with an unparsable date or amount are counted and skipped.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	res := Parse(f, df.Path)
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", df.Path, res.Err)
	}
	return res
}

// Parse reads CSV rows from r. file is recorded on each transaction.
func Parse(r io.Reader, file string) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{Err: errors.New("empty file")}
		}
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return ParseResult{Err: fmt.Errorf("missing column %q", c)}
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var res ParseResult
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.ParseErrors++
			log.Debug().Str("file", file).Int("line", line).Err(err).Msg("skipping malformed csv row")
			continue
		}
		if isBlank(rec) {
			continue
		}

		txn, err := parseRow(rec, field)
		if err != nil {
			res.ParseErrors++
			log.Debug().Str("file", file).Int("line", line).Err(err).Msg("skipping csv row")
			continue
		}
		txn.File = file
		res.Transactions = append(res.Transactions, txn)
	}
	return res
}

func parseRow(rec []string, field func([]string, string) string) (model.Transaction, error) {
	td, err := ParseDate(field(rec, ColTransactionDate))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction date: %w", err)
	}
	pd, err := ParseDate(field(rec, ColPostDate))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("post date: %w", err)
	}
	amt, err := decimal.NewFromString(strings.ReplaceAll(field(rec, ColAmount), ",", ""))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	return model.Transaction{
		TransactionDate: td,
		PostDate:        pd,
		Description:     field(rec, ColDescription),
		Category:        field(rec, ColCategory),
		Type:            field(rec, ColType),
		Amount:          amt,
		Memo:            field(rec, ColMemo),
	}, nil
}

// ParseDate parses an MM/DD/YYYY export date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(CSVDateLayout, s)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
