package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
)

// BenefitStates returns every persisted benefit state keyed by "id|period".
func (s *Store) BenefitStates() (map[string]model.BenefitState, error) {
	rows, err := s.db.Query(`SELECT benefit_id, period, posted, post_date,
		custom_amount, posted_anniversary_year FROM benefit_state`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]model.BenefitState)
	for rows.Next() {
		var id, period string
		st, err := scanState(rows, &id, &period)
		if err != nil {
			return nil, err
		}
		result[model.StateKey(id, period)] = st
	}
	return result, rows.Err()
}

// BenefitState returns the state of one benefit period. ok is false when
// nothing has been stored for it.
func (s *Store) BenefitState(benefitID, period string) (st model.BenefitState, ok bool, err error) {
	row := s.db.QueryRow(`SELECT benefit_id, period, posted, post_date,
		custom_amount, posted_anniversary_year FROM benefit_state
		WHERE benefit_id = ? AND period = ?`, benefitID, period)
	var id, p string
	st, err = scanState(row, &id, &p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BenefitState{}, false, nil
	}
	if err != nil {
		return model.BenefitState{}, false, err
	}
	return st, true, nil
}

// SaveBenefitState upserts the state of one benefit period.
func (s *Store) SaveBenefitState(benefitID, period string, st model.BenefitState) error {
	var postDate sql.NullString
	if st.PostDate != nil {
		postDate = sql.NullString{String: formatDate(*st.PostDate), Valid: true}
	}
	var custom sql.NullFloat64
	if st.CustomAmount != nil {
		custom = sql.NullFloat64{Float64: *st.CustomAmount, Valid: true}
	}
	var annYear sql.NullInt64
	if st.PostedAnniversaryYear != nil {
		annYear = sql.NullInt64{Int64: int64(*st.PostedAnniversaryYear), Valid: true}
	}

	_, err := s.db.Exec(`INSERT INTO benefit_state
		(benefit_id, period, posted, post_date, custom_amount, posted_anniversary_year, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(benefit_id, period) DO UPDATE SET
			posted = excluded.posted,
			post_date = excluded.post_date,
			custom_amount = excluded.custom_amount,
			posted_anniversary_year = excluded.posted_anniversary_year,
			updated_at = excluded.updated_at`,
		benefitID, period, boolInt(st.Posted), postDate, custom, annYear, now())
	if err != nil {
		return fmt.Errorf("saving benefit state %s|%s: %w", benefitID, period, err)
	}
	return nil
}

// BenefitStateCount returns the number of stored benefit periods.
func (s *Store) BenefitStateCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM benefit_state").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(r scanner, id, period *string) (model.BenefitState, error) {
	var posted int
	var postDate sql.NullString
	var custom sql.NullFloat64
	var annYear sql.NullInt64
	if err := r.Scan(id, period, &posted, &postDate, &custom, &annYear); err != nil {
		return model.BenefitState{}, err
	}

	st := model.BenefitState{Posted: posted != 0}
	if postDate.Valid && postDate.String != "" {
		d, err := parseDate(postDate.String)
		if err != nil {
			return model.BenefitState{}, fmt.Errorf("post date %q: %w", postDate.String, err)
		}
		st.PostDate = &d
	}
	if custom.Valid {
		v := custom.Float64
		st.CustomAmount = &v
	}
	if annYear.Valid {
		y := int(annYear.Int64)
		st.PostedAnniversaryYear = &y
	}
	return st, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// datePtr is a small helper for callers building states.
func datePtr(t time.Time) *time.Time {
	return &t
}
