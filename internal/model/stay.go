package model

import "time"

// Stay is a hotel stay counting toward elite nights.
type Stay struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Nights is the number of nights between check-in and check-out.
func (s Stay) Nights() int {
	return int(Day(s.CheckOut).Sub(Day(s.CheckIn)).Hours() / 24)
}

// GOHNight is a night credited through a guest-of-honor booking.
type GOHNight struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}
