package domain

import (
	"fmt"
	"time"
)

// Period identifies a monthly accounting window.
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates and builds a Period.
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// ParsePeriodKey parses a "YYYY-MM" key.
func ParsePeriodKey(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q is not a YYYY-MM key", ErrInvalidPeriod, key)
	}
	return NewPeriod(int(t.Month()), t.Year())
}

// Validate checks the month and year ranges.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1900 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Key returns the journal period key, e.g. "2025-03".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return p.Key()
}

// Start is midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End is midnight UTC on the last day of the month. Snapshots are dated here.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Days is the number of calendar days in the month.
func (p Period) Days() int {
	return p.End().Day()
}

// Window returns the closing window covering the whole month.
func (p Period) Window() Window {
	return Window{Start: p.Start(), End: p.End()}
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days counts calendar days in the window, both ends included.
func (w Window) Days() int {
	start := truncateDay(w.Start)
	end := truncateDay(w.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(w.Start)) && !d.After(truncateDay(w.End))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodStatus is the lifecycle state of a fiscal period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// FiscalPeriod is the persisted lock record for a Period. Status only ever
// moves from OPEN to CLOSED; confirmation is a second one-way flag on top.
type FiscalPeriod struct {
	ID          string
	Month       int
	Year        int
	Status      PeriodStatus
	ClosedAt    *time.Time
	ClosedBy    string
	ConfirmedAt *time.Time
	ConfirmedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Period returns the (month, year) key of the record.
func (f *FiscalPeriod) Period() Period {
	return Period{Month: f.Month, Year: f.Year}
}

// IsClosed reports whether the period is locked.
func (f *FiscalPeriod) IsClosed() bool {
	return f.Status == PeriodStatusClosed
}

// IsConfirmed reports whether snapshot numbers have been frozen.
func (f *FiscalPeriod) IsConfirmed() bool {
	return f.ConfirmedAt != nil
}

// Close transitions an open period to CLOSED.
func (f *FiscalPeriod) Close(actor string, at time.Time) error {
	if f.IsClosed() {
		return ErrPeriodAlreadyClosed
	}
	f.Status = PeriodStatusClosed
	f.ClosedAt = &at
	f.ClosedBy = actor
	f.UpdatedAt = at
	return nil
}

// Confirm freezes a closed period.
func (f *FiscalPeriod) Confirm(actor string, at time.Time) error {
	if !f.IsClosed() {
		return ErrPeriodNotClosed
	}
	if f.IsConfirmed() {
		return ErrPeriodAlreadyConfirmed
	}
	f.ConfirmedAt = &at
	f.ConfirmedBy = actor
	f.UpdatedAt = at
	return nil
}
