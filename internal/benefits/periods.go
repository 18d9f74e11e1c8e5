package benefits

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
)

// Periods are generated for this many years before and after today's year.
const (
	yearsBack    = 2
	yearsForward = 1
)

var anniversaryPeriod = regexp.MustCompile(`-A[0-9HQ]`)

// Periods lists the period identifiers of a benefit for the years around today.
func Periods(b config.BenefitConfig, card config.CardConfig, today time.Time) []string {
	rm := card.RenewalMonth
	if rm == 0 {
		rm = 1
	}
	freq := b.Frequency
	if freq == "" {
		freq = model.Yearly
	}

	var periods []string
	for year := today.Year() - yearsBack; year <= today.Year()+yearsForward; year++ {
		if b.RenewalType == model.CardAnniversary {
			switch freq {
			case model.Yearly, model.Every4Years:
				periods = append(periods, fmt.Sprintf("%d-A%02d", year, rm))
			case model.HalfYearly:
				for h := 1; h <= 2; h++ {
					periods = append(periods, fmt.Sprintf("%d-AH%d-%02d", year, h, rm))
				}
			case model.Quarterly:
				for q := 1; q <= 4; q++ {
					periods = append(periods, fmt.Sprintf("%d-AQ%d-%02d", year, q, rm))
				}
			}
			continue
		}

		switch freq {
		case model.Yearly:
			periods = append(periods, strconv.Itoa(year))
		case model.HalfYearly:
			periods = append(periods, fmt.Sprintf("%d-H1", year), fmt.Sprintf("%d-H2", year))
		case model.Quarterly:
			for q := 1; q <= 4; q++ {
				periods = append(periods, fmt.Sprintf("%d-Q%d", year, q))
			}
		case model.Monthly:
			for m := time.January; m <= time.December; m++ {
				periods = append(periods, fmt.Sprintf("%d-%s", year, m.String()[:3]))
			}
		}
	}
	return periods
}

// RenewalTypeOf infers the renewal type from a period identifier.
// Month names such as 2026-Apr stay calendar periods.
func RenewalTypeOf(period string) model.RenewalType {
	if anniversaryPeriod.MatchString(period) {
		return model.CardAnniversary
	}
	return model.CalendarYear
}

// PeriodAnniversaryYear returns the leading year of a period containing "-A".
func PeriodAnniversaryYear(period string) (int, bool) {
	if !strings.Contains(period, "-A") {
		return 0, false
	}
	y, err := strconv.Atoi(strings.SplitN(period, "-", 2)[0])
	if err != nil {
		return 0, false
	}
	return y, true
}

// CalendarPeriodRange returns the first and last day of a calendar period:
// YYYY, YYYY-H1/H2, YYYY-Q1..Q4, YYYY-Mon, or the legacy YYYY-MNN.
func CalendarPeriodRange(period string) (start, end time.Time, ok bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.HasSuffix(period, m.String()[:3]) {
			if y, err := strconv.Atoi(strings.SplitN(period, "-", 2)[0]); err == nil {
				return monthRange(y, m)
			}
		}
	}

	switch {
	case strings.Contains(period, "-M"):
		ys, ms, _ := strings.Cut(period, "-M")
		y, err1 := strconv.Atoi(ys)
		m, err2 := strconv.Atoi(ms)
		if err1 != nil || err2 != nil || m < 1 || m > 12 {
			return time.Time{}, time.Time{}, false
		}
		return monthRange(y, time.Month(m))
	case strings.Contains(period, "-H"):
		ys, half, _ := strings.Cut(period, "-H")
		y, err := strconv.Atoi(ys)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		// Halves other than 1 and 2, and quarters outside 1..4, have no range.
		switch half {
		case "1":
			return model.Date(y, 1, 1), model.Date(y, 6, 30), true
		case "2":
			return model.Date(y, 7, 1), model.Date(y, 12, 31), true
		}
		return time.Time{}, time.Time{}, false
	case strings.Contains(period, "-Q"):
		ys, qs, _ := strings.Cut(period, "-Q")
		y, err1 := strconv.Atoi(ys)
		q, err2 := strconv.Atoi(qs)
		if err1 != nil || err2 != nil || q < 1 || q > 4 {
			return time.Time{}, time.Time{}, false
		}
		first := model.Date(y, time.Month(3*q-2), 1)
		return first, first.AddDate(0, 3, -1), true
	}

	y, err := strconv.Atoi(period)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return model.Date(y, 1, 1), model.Date(y, 12, 31), true
}

func monthRange(year int, m time.Month) (time.Time, time.Time, bool) {
	first := model.Date(year, m, 1)
	return first, first.AddDate(0, 1, -1), true
}

// ParsePeriod maps a period to a (year, month) sort key. Periods that span
// a whole year use month 0; unrecognised periods return (0, 0).
func ParsePeriod(period string) (year, month int) {
	if !strings.Contains(period, "-") {
		y, err := strconv.Atoi(period)
		if err != nil {
			return 0, 0
		}
		return y, 0
	}

	parts := strings.Split(period, "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0
	}

	if t, err := time.Parse("2006-Jan", period); err == nil {
		return t.Year(), int(t.Month())
	}

	seg := parts[1]
	switch {
	case strings.Contains(seg, "A"):
		monthPart := strings.ReplaceAll(seg, "A", "")
		if len(parts) > 2 {
			monthPart = parts[len(parts)-1]
		}
		if n := len(monthPart); n >= 2 && isDigits(monthPart[n-2:]) {
			m, _ := strconv.Atoi(monthPart[n-2:])
			return year, m
		}
		if n := len(monthPart); n >= 1 && isDigits(monthPart[n-1:]) {
			m, _ := strconv.Atoi(monthPart[n-1:])
			return year, m
		}
		return year, 0
	case strings.Contains(seg, "Q"):
		q, err := strconv.Atoi(strings.ReplaceAll(seg, "Q", ""))
		if err != nil {
			return 0, 0
		}
		return year, 3*q - 2
	case strings.Contains(seg, "H"):
		h, err := strconv.Atoi(strings.ReplaceAll(seg, "H", ""))
		if err != nil {
			return 0, 0
		}
		if h == 1 {
			return year, 1
		}
		return year, 7
	}
	return 0, 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// SortByPeriod orders benefits chronologically, keeping ties in place.
func SortByPeriod(bs []model.Benefit) {
	sort.SliceStable(bs, func(i, j int) bool {
		yi, mi := ParsePeriod(bs[i].Period)
		yj, mj := ParsePeriod(bs[j].Period)
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})
}
