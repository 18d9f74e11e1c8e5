package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/cardperks/internal/model"
)

// legacyBenefit is one entry of a benefits_state.json file.
type legacyBenefit struct {
	Posted                bool     `json:"posted"`
	PostDate              *string  `json:"post_date"`
	CustomAmount          *float64 `json:"custom_amount"`
	PostedAnniversaryYear *int     `json:"posted_anniversary_year"`
}

type legacyStays struct {
	Stays []struct {
		Name     string `json:"name"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	} `json:"stays"`
	GOHNights []struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"goh_nights"`
}

// ImportResult counts what a legacy import wrote.
type ImportResult struct {
	Benefits int
	Stays    int
	GOH      int
	Skipped  int
	// Existing counts records already in the database from an earlier import.
	Existing int
}

// ImportBenefitsJSON loads a benefits_state.json document keyed by
// "benefitID|period" and upserts every entry.
func (s *Store) ImportBenefitsJSON(r io.Reader) (ImportResult, error) {
	var doc map[string]legacyBenefit
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("decoding benefits state: %w", err)
	}

	var res ImportResult
	for key, lb := range doc {
		id, period, ok := strings.Cut(key, "|")
		if !ok || id == "" || period == "" {
			res.Skipped++
			continue
		}
		st := model.BenefitState{
			Posted:                lb.Posted,
			CustomAmount:          lb.CustomAmount,
			PostedAnniversaryYear: lb.PostedAnniversaryYear,
		}
		if lb.PostDate != nil && *lb.PostDate != "" {
			d, err := parseLegacyDate(*lb.PostDate)
			if err != nil {
				res.Skipped++
				continue
			}
			st.PostDate = datePtr(d)
		}
		if err := s.SaveBenefitState(id, period, st); err != nil {
			return res, err
		}
		res.Benefits++
	}
	return res, nil
}

// ImportStaysJSON loads a stays_state.json document and appends its stays
// and guest-of-honor nights in file order. Missing sections are treated as
// empty. A record is only added when the database holds fewer copies of it
// than the file has seen so far, so importing the same file twice is a no-op.
func (s *Store) ImportStaysJSON(r io.Reader) (ImportResult, error) {
	var doc legacyStays
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("decoding stays state: %w", err)
	}

	var res ImportResult
	seen := make(map[string]int)
	for _, ls := range doc.Stays {
		in, err1 := parseLegacyDate(ls.CheckIn)
		out, err2 := parseLegacyDate(ls.CheckOut)
		if err1 != nil || err2 != nil || ls.Name == "" || !out.After(in) {
			res.Skipped++
			continue
		}
		key := "stay|" + ls.Name + "|" + formatDate(in) + "|" + formatDate(out)
		seen[key]++
		have, err := s.countRows(`SELECT COUNT(*) FROM stays WHERE name = ? AND check_in = ? AND check_out = ?`,
			ls.Name, formatDate(in), formatDate(out))
		if err != nil {
			return res, err
		}
		if have >= seen[key] {
			res.Existing++
			continue
		}
		if err := s.InsertStay(model.Stay{ID: uuid.NewString(), Name: ls.Name, CheckIn: in, CheckOut: out}); err != nil {
			return res, err
		}
		res.Stays++
	}
	for _, lg := range doc.GOHNights {
		d, err := parseLegacyDate(lg.Date)
		if err != nil || lg.Name == "" {
			res.Skipped++
			continue
		}
		key := "goh|" + lg.Name + "|" + formatDate(d)
		seen[key]++
		have, err := s.countRows(`SELECT COUNT(*) FROM goh_nights WHERE name = ? AND date = ?`,
			lg.Name, formatDate(d))
		if err != nil {
			return res, err
		}
		if have >= seen[key] {
			res.Existing++
			continue
		}
		if err := s.InsertGOH(model.GOHNight{ID: uuid.NewString(), Name: lg.Name, Date: d}); err != nil {
			return res, err
		}
		res.GOH++
	}
	return res, nil
}

func (s *Store) countRows(query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting existing records: %w", err)
	}
	return n, nil
}

// parseLegacyDate accepts ISO dates, optionally with a time component.
func parseLegacyDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	return parseDate(s)
}
