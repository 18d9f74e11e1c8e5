package stays

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	m, err := New(st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, st
}

func TestAddStay_Validation(t *testing.T) {
	m, _ := newTestManager(t)
	in, out := model.Date(2025, 3, 1), model.Date(2025, 3, 4)

	tests := []struct {
		name    string
		stay    string
		in, out time.Time
	}{
		{"empty name", "", in, out},
		{"blank name", "   ", in, out},
		{"missing check-in", "Park", time.Time{}, out},
		{"missing check-out", "Park", in, time.Time{}},
		{"same day", "Park", in, in},
		{"reversed", "Park", out, in},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.AddStay(tt.stay, tt.in, tt.out); !errors.Is(err, ErrInvalidStay) {
				t.Errorf("err = %v, want ErrInvalidStay", err)
			}
		})
	}
	if n := len(m.Stays()); n != 0 {
		t.Errorf("invalid stays recorded: %d", n)
	}
}

func TestStays_PersistInOrder(t *testing.T) {
	m, st := newTestManager(t)
	names := []string{"Park Hyatt", "Andaz", "Grand Hyatt"}
	for i, n := range names {
		in := model.Date(2025, time.Month(i+1), 10)
		if _, err := m.AddStay(n, in, in.AddDate(0, 0, 2)); err != nil {
			t.Fatal(err)
		}
	}

	reopened, err := New(st)
	if err != nil {
		t.Fatal(err)
	}
	got := reopened.Stays()
	if len(got) != 3 {
		t.Fatalf("stays = %d, want 3", len(got))
	}
	for i, s := range got {
		if s.Name != names[i] {
			t.Errorf("stay %d = %q, want %q", i, s.Name, names[i])
		}
		if s.Nights() != 2 {
			t.Errorf("stay %d nights = %d", i, s.Nights())
		}
		if len(s.ID) != 36 {
			t.Errorf("stay %d id = %q", i, s.ID)
		}
	}
}

func TestDeleteStay(t *testing.T) {
	m, st := newTestManager(t)
	a, _ := m.AddStay("A", model.Date(2025, 1, 1), model.Date(2025, 1, 2))
	b, _ := m.AddStay("B", model.Date(2025, 2, 1), model.Date(2025, 2, 2))
	c, _ := m.AddStay("C", model.Date(2025, 3, 1), model.Date(2025, 3, 2))

	for _, idx := range []int{-1, 3, 99} {
		if ok, err := m.DeleteStay(idx); ok || err != nil {
			t.Errorf("DeleteStay(%d) = %v, %v", idx, ok, err)
		}
	}
	if ok, err := m.DeleteStay(1); !ok || err != nil {
		t.Fatalf("DeleteStay(1) = %v, %v", ok, err)
	}
	if ok, err := m.DeleteStayByID(a.ID); !ok || err != nil {
		t.Fatalf("DeleteStayByID = %v, %v", ok, err)
	}
	if ok, _ := m.DeleteStayByID(b.ID); ok {
		t.Error("deleted an already removed stay")
	}

	stored, err := st.Stays()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != c.ID {
		t.Errorf("stored = %+v, want only C", stored)
	}
}

func TestGOH(t *testing.T) {
	m, st := newTestManager(t)
	if _, err := m.AddGOH("", model.Date(2025, 1, 1)); !errors.Is(err, ErrInvalidGOH) {
		t.Errorf("empty name: err = %v", err)
	}
	if _, err := m.AddGOH("Friend", time.Time{}); !errors.Is(err, ErrInvalidGOH) {
		t.Errorf("missing date: err = %v", err)
	}

	if _, err := m.AddGOH("Friend", model.Date(2025, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddGOH("Parent", model.Date(2025, 2, 1)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.DeleteGOH(5); ok {
		t.Error("out-of-range delete succeeded")
	}
	if ok, err := m.DeleteGOH(0); !ok || err != nil {
		t.Fatalf("DeleteGOH(0) = %v, %v", ok, err)
	}

	stored, err := st.GOHNights()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Name != "Parent" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCount(t *testing.T) {
	m, _ := newTestManager(t)
	ref := model.Date(2025, 6, 1)
	_, _ = m.AddStay("past", model.Date(2025, 5, 1), model.Date(2025, 5, 4))
	_, _ = m.AddStay("checkout today", model.Date(2025, 5, 30), ref)
	_, _ = m.AddStay("in progress", model.Date(2025, 5, 31), model.Date(2025, 6, 3))
	_, _ = m.AddGOH("past", model.Date(2025, 6, 1))
	_, _ = m.AddGOH("future", model.Date(2025, 7, 1))

	got := m.Count(ref)
	want := Totals{StayCurrent: 5, StayUpcoming: 3, GOHCurrent: 1, GOHUpcoming: 1}
	if got != want {
		t.Errorf("Count = %+v, want %+v", got, want)
	}
}

func TestImportLegacy(t *testing.T) {
	m, st := newTestManager(t)
	doc := `{"stays":[{"name":"Andaz","check_in":"2024-05-01","check_out":"2024-05-03"}],"goh_nights":[{"name":"Mom","date":"2024-06-01T00:00:00"}]}`
	res, err := st.ImportStaysJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if res.Stays != 1 || res.GOH != 1 {
		t.Errorf("import = %+v", res)
	}
	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(m.Stays()) != 1 || len(m.GOHNights()) != 1 {
		t.Errorf("after reload: %d stays, %d goh", len(m.Stays()), len(m.GOHNights()))
	}
}
