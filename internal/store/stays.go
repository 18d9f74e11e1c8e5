package store

import (
	"fmt"

	"github.com/theirongolddev/cardperks/internal/model"
)

// Stays returns every stay in insertion order.
func (s *Store) Stays() ([]model.Stay, error) {
	rows, err := s.db.Query("SELECT id, name, check_in, check_out FROM stays ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Stay
	for rows.Next() {
		var st model.Stay
		var in, outDate string
		if err := rows.Scan(&st.ID, &st.Name, &in, &outDate); err != nil {
			return nil, err
		}
		if st.CheckIn, err = parseDate(in); err != nil {
			return nil, fmt.Errorf("stay %s check-in: %w", st.ID, err)
		}
		if st.CheckOut, err = parseDate(outDate); err != nil {
			return nil, fmt.Errorf("stay %s check-out: %w", st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// InsertStay appends a stay after all existing ones.
func (s *Store) InsertStay(st model.Stay) error {
	_, err := s.db.Exec(`INSERT INTO stays (id, seq, name, check_in, check_out, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM stays), ?, ?, ?, ?)`,
		st.ID, st.Name, formatDate(st.CheckIn), formatDate(st.CheckOut), now())
	if err != nil {
		return fmt.Errorf("inserting stay: %w", err)
	}
	return nil
}

// DeleteStay removes a stay by ID, reporting whether one existed.
func (s *Store) DeleteStay(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM stays WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GOHNights returns every guest-of-honor night in insertion order.
func (s *Store) GOHNights() ([]model.GOHNight, error) {
	rows, err := s.db.Query("SELECT id, name, date FROM goh_nights ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.GOHNight
	for rows.Next() {
		var g model.GOHNight
		var d string
		if err := rows.Scan(&g.ID, &g.Name, &d); err != nil {
			return nil, err
		}
		if g.Date, err = parseDate(d); err != nil {
			return nil, fmt.Errorf("goh night %s date: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertGOH appends a guest-of-honor night.
func (s *Store) InsertGOH(g model.GOHNight) error {
	_, err := s.db.Exec(`INSERT INTO goh_nights (id, seq, name, date, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM goh_nights), ?, ?, ?)`,
		g.ID, g.Name, formatDate(g.Date), now())
	if err != nil {
		return fmt.Errorf("inserting goh night: %w", err)
	}
	return nil
}

// DeleteGOH removes a guest-of-honor night by ID.
func (s *Store) DeleteGOH(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM goh_nights WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
