package source

import "github.com/theirongolddev/cardperks/internal/model"

// Column names in a bank CSV export header.
const (
	ColTransactionDate = "Transaction Date"
	ColPostDate        = "Post Date"
	ColDescription     = "Description"
	ColCategory        = "Category"
	ColType            = "Type"
	ColAmount          = "Amount"
	ColMemo            = "Memo"
)

// CSVDateLayout is the MM/DD/YYYY layout used by the exports.
const CSVDateLayout = "01/02/2006"

// DiscoveredFile is a CSV export found during directory scanning.
type DiscoveredFile struct {
	Path string
	Kind model.CardKind
}

// ParseResult holds the output of parsing a single CSV file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int
	Err          error
}
