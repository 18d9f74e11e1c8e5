// Package stays records hotel stays and guest-of-honor nights that count
// toward elite status.
package stays

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/cardperks/internal/model"
)

var (
	// ErrInvalidStay is returned for a stay without a name, with a missing
	// date, or with check-out not after check-in.
	ErrInvalidStay = errors.New("invalid stay")
	// ErrInvalidGOH is returned for a guest-of-honor night without a name or date.
	ErrInvalidGOH = errors.New("invalid guest-of-honor night")
)

// Store persists stays and guest-of-honor nights in insertion order.
type Store interface {
	Stays() ([]model.Stay, error)
	InsertStay(model.Stay) error
	DeleteStay(id string) (bool, error)
	GOHNights() ([]model.GOHNight, error)
	InsertGOH(model.GOHNight) error
	DeleteGOH(id string) (bool, error)
}

// Manager keeps an in-memory copy of the stored records. Every mutation
// is written through to the store before the copy changes.
type Manager struct {
	store Store

	mu    sync.RWMutex
	stays []model.Stay
	goh   []model.GOHNight
}

// New loads all records from st.
func New(st Store) (*Manager, error) {
	m := &Manager{store: st}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads every record from the store.
func (m *Manager) Reload() error {
	stays, err := m.store.Stays()
	if err != nil {
		return fmt.Errorf("loading stays: %w", err)
	}
	goh, err := m.store.GOHNights()
	if err != nil {
		return fmt.Errorf("loading goh nights: %w", err)
	}
	m.mu.Lock()
	m.stays, m.goh = stays, goh
	m.mu.Unlock()
	return nil
}

// AddStay validates and records a stay, returning it with its new ID.
func (m *Manager) AddStay(name string, checkIn, checkOut time.Time) (model.Stay, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return model.Stay{}, fmt.Errorf("%w: name is required", ErrInvalidStay)
	case checkIn.IsZero() || checkOut.IsZero():
		return model.Stay{}, fmt.Errorf("%w: check-in and check-out are required", ErrInvalidStay)
	case !model.Day(checkOut).After(model.Day(checkIn)):
		return model.Stay{}, fmt.Errorf("%w: check-out must be after check-in", ErrInvalidStay)
	}

	st := model.Stay{
		ID:       uuid.NewString(),
		Name:     name,
		CheckIn:  model.Day(checkIn),
		CheckOut: model.Day(checkOut),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.InsertStay(st); err != nil {
		return model.Stay{}, err
	}
	m.stays = append(m.stays, st)
	return st, nil
}

// DeleteStay removes the stay at index. An out-of-range index returns false.
func (m *Manager) DeleteStay(index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.stays) {
		return false, nil
	}
	if _, err := m.store.DeleteStay(m.stays[index].ID); err != nil {
		return false, fmt.Errorf("deleting stay: %w", err)
	}
	m.stays = append(m.stays[:index], m.stays[index+1:]...)
	return true, nil
}

// DeleteStayByID removes a stay by its ID.
func (m *Manager) DeleteStayByID(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, st := range m.stays {
		if st.ID != id {
			continue
		}
		if _, err := m.store.DeleteStay(id); err != nil {
			return false, fmt.Errorf("deleting stay: %w", err)
		}
		m.stays = append(m.stays[:i], m.stays[i+1:]...)
		return true, nil
	}
	return false, nil
}

// Stays returns a copy of every stay in insertion order.
func (m *Manager) Stays() []model.Stay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Stay, len(m.stays))
	copy(out, m.stays)
	return out
}

// AddGOH records a guest-of-honor night.
func (m *Manager) AddGOH(name string, date time.Time) (model.GOHNight, error) {
	name = strings.TrimSpace(name)
	if name == "" || date.IsZero() {
		return model.GOHNight{}, fmt.Errorf("%w: name and date are required", ErrInvalidGOH)
	}
	g := model.GOHNight{ID: uuid.NewString(), Name: name, Date: model.Day(date)}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.InsertGOH(g); err != nil {
		return model.GOHNight{}, err
	}
	m.goh = append(m.goh, g)
	return g, nil
}

// DeleteGOH removes the guest-of-honor night at index.
func (m *Manager) DeleteGOH(index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.goh) {
		return false, nil
	}
	if _, err := m.store.DeleteGOH(m.goh[index].ID); err != nil {
		return false, fmt.Errorf("deleting goh night: %w", err)
	}
	m.goh = append(m.goh[:index], m.goh[index+1:]...)
	return true, nil
}

// GOHNights returns a copy of every guest-of-honor night in insertion order.
func (m *Manager) GOHNights() []model.GOHNight {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.GOHNight, len(m.goh))
	copy(out, m.goh)
	return out
}

// Totals splits stay and guest-of-honor nights at ref. A stay is current
// once checked out on or before ref; a GOH night once its date has passed.
type Totals struct {
	StayCurrent, StayUpcoming int
	GOHCurrent, GOHUpcoming   int
}

// Count totals nights relative to ref.
func (m *Manager) Count(ref time.Time) Totals {
	ref = model.Day(ref)
	var t Totals
	for _, st := range m.Stays() {
		if !st.CheckOut.After(ref) {
			t.StayCurrent += st.Nights()
		} else {
			t.StayUpcoming += st.Nights()
		}
	}
	for _, g := range m.GOHNights() {
		if !g.Date.After(ref) {
			t.GOHCurrent++
		} else {
			t.GOHUpcoming++
		}
	}
	return t
}
