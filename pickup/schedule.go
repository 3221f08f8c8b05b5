// Package pickup decides which daily pickup slots can still be chosen for a
// date, given a minimum lead time.
package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrNoSlots         = errors.New("no pickup slots available for this date")
	ErrSlotUnavailable = errors.New("the selected pickup slot is no longer available")
	ErrUnknownSlot     = errors.New("unknown pickup slot")
	ErrInvalidDate     = errors.New("invalid pickup date")
)

// Slot is a named daily window such as "12:00–13:00".
type Slot struct {
	Label  string
	Hour   int
	Minute int
}

// ParseSlot reads the start time from a label of the form "HH:MM–HH:MM".
// Hyphen, en dash and em dash separators are accepted.
func ParseSlot(label string) (Slot, error) {
	label = strings.TrimSpace(label)
	start, _, ok := cutAny(label, "–", "—", "-")
	if !ok {
		start = label
	}
	t, err := time.Parse("15:04", strings.TrimSpace(start))
	if err != nil {
		return Slot{}, fmt.Errorf("parse slot %q: %w", label, err)
	}
	return Slot{Label: label, Hour: t.Hour(), Minute: t.Minute()}, nil
}

func cutAny(s string, seps ...string) (before, after string, found bool) {
	for _, sep := range seps {
		if before, after, found = strings.Cut(s, sep); found {
			return before, after, true
		}
	}
	return s, "", false
}

// StartOn returns the instant the slot begins on the given calendar date.
func (s Slot) StartOn(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, loc)
}

type Schedule struct {
	slots    []Slot
	leadTime time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewSchedule(labels []string, leadTime time.Duration, loc *time.Location) (*Schedule, error) {
	if len(labels) == 0 {
		return nil, errors.New("pickup schedule needs at least one slot")
	}
	if loc == nil {
		loc = time.Local
	}
	slots := make([]Slot, 0, len(labels))
	for _, l := range labels {
		s, err := ParseSlot(l)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return &Schedule{slots: slots, leadTime: leadTime, loc: loc, now: time.Now}, nil
}

// WithClock replaces the schedule's notion of "now".
func (s *Schedule) WithClock(now func() time.Time) *Schedule {
	c := *s
	c.now = now
	return &c
}

func (s *Schedule) Location() *time.Location { return s.loc }

func (s *Schedule) LeadTime() time.Duration { return s.leadTime }

// Slots returns every configured slot regardless of date.
func (s *Schedule) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Available returns the slots on date that start strictly after now plus
// the lead time.
func (s *Schedule) Available(date time.Time) []Slot {
	cutoff := s.now().Add(s.leadTime)
	var out []Slot
	for _, slot := range s.slots {
		if cutoff.Before(slot.StartOn(date, s.loc)) {
			out = append(out, slot)
		}
	}
	return out
}

// Reconcile keeps selected when it is still available on date and falls
// back to the first available slot otherwise.
func (s *Schedule) Reconcile(date time.Time, selected string) (string, error) {
	available := s.Available(date)
	if len(available) == 0 {
		return "", ErrNoSlots
	}
	for _, slot := range available {
		if slot.Label == selected {
			return selected, nil
		}
	}
	return available[0].Label, nil
}

// Validate checks that label can be booked on date.
func (s *Schedule) Validate(date time.Time, label string) error {
	known := false
	for _, slot := range s.slots {
		if slot.Label == label {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}

	available := s.Available(date)
	if len(available) == 0 {
		return ErrNoSlots
	}
	for _, slot := range available {
		if slot.Label == label {
			return nil
		}
	}
	return ErrSlotUnavailable
}

// ParseDate parses a YYYY-MM-DD date in the schedule's location.
func (s *Schedule) ParseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	}
	return d, nil
}

// Dates returns today and the following days, n dates in total.
func (s *Schedule) Dates(n int) []time.Time {
	y, m, d := s.now().In(s.loc).Date()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, s.loc))
	}
	return out
}
