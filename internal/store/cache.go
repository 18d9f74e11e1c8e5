package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cardperks/internal/model"
)

// FileInfo holds the tracked state of a parsed CSV file.
type FileInfo struct {
	Kind        model.CardKind
	MtimeNs     int64
	SizeBytes   int64
	ParseErrors int
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, kind, mtime_ns, size_bytes, parse_errors FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path, kind string
		var fi FileInfo
		if err := rows.Scan(&path, &kind, &fi.MtimeNs, &fi.SizeBytes, &fi.ParseErrors); err != nil {
			return nil, err
		}
		fi.Kind = model.CardKind(kind)
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached rows of one CSV file and its tracking info.
func (s *Store) SaveFile(path string, fi FileInfo, txns []model.Transaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, kind, mtime_ns, size_bytes, parse_errors, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)`, path, string(fi.Kind), fi.MtimeNs, fi.SizeBytes, fi.ParseErrors, now())
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions
		(file_path, row_num, transaction_date, post_date, description, category, type, amount, memo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range txns {
		_, err := stmt.Exec(path, i, formatDate(t.TransactionDate), formatDate(t.PostDate),
			t.Description, t.Category, t.Type, t.Amount.String(), t.Memo)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadFileTransactions reads every cached transaction, grouped by file
// and in original row order.
func (s *Store) LoadFileTransactions() (map[string][]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT file_path, transaction_date, post_date,
		description, category, type, amount, memo
		FROM transactions ORDER BY file_path, row_num`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]model.Transaction)
	for rows.Next() {
		var t model.Transaction
		var td, pd, amt string
		var desc, cat, typ, memo sql.NullString
		if err := rows.Scan(&t.File, &td, &pd, &desc, &cat, &typ, &amt, &memo); err != nil {
			return nil, err
		}
		if t.TransactionDate, err = parseDate(td); err != nil {
			return nil, fmt.Errorf("cached transaction date %q: %w", td, err)
		}
		if t.PostDate, err = parseDate(pd); err != nil {
			return nil, fmt.Errorf("cached post date %q: %w", pd, err)
		}
		if t.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, fmt.Errorf("cached amount %q: %w", amt, err)
		}
		t.Description, t.Category, t.Type, t.Memo = desc.String, cat.String, typ.String, memo.String
		result[t.File] = append(result[t.File], t)
	}
	return result, rows.Err()
}

// DeleteFile removes a tracked file and its cached rows.
func (s *Store) DeleteFile(path string) error {
	_, err := s.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of cached transactions.
func (s *Store) TransactionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// ClearCache drops every tracked file. Cached transactions go with them
// through the ON DELETE CASCADE on transactions.file_path.
func (s *Store) ClearCache() error {
	_, err := s.db.Exec("DELETE FROM file_tracker")
	return err
}
