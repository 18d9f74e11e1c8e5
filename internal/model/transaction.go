// Package model defines domain types for card spend, benefits, and stays.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO layout used for persisted dates.
const DateLayout = "2006-01-02"

// CardKind identifies which co-branded card a transaction belongs to.
type CardKind string

const (
	Personal CardKind = "personal"
	Business CardKind = "business"
)

// Kinds lists the supported cards in display order.
var Kinds = []CardKind{Personal, Business}

// Transaction is one row of a bank CSV export.
type Transaction struct {
	TransactionDate time.Time
	PostDate        time.Time
	Description     string
	Category        string
	Type            string
	Amount          decimal.Decimal // as exported: charges negative, refunds positive
	Memo            string
	File            string
}

// LedgerEntry is a spend-bearing transaction annotated with running totals
// and any bonus-night event it triggered.
type LedgerEntry struct {
	Transaction

	Spend              decimal.Decimal
	Year               int
	Cumulative         decimal.Decimal
	PrevCumulative     decimal.Decimal
	YearCumulative     decimal.Decimal
	PrevYearCumulative decimal.Decimal

	// Nights is the bonus-night delta; 0 means no tier event.
	Nights int
}

// Ledger is the processed history for a single card.
type Ledger struct {
	Kind    CardKind
	Entries []LedgerEntry
}

// Empty reports whether the ledger has no entries.
func (l Ledger) Empty() bool {
	return len(l.Entries) == 0
}

// Date returns midnight UTC for the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
