package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero Date means
// "unbounded" when used as a period start.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }
func (d Date) Time() time.Time { return d.t }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Period is an inclusive date range. A zero Start reaches back to the
// first posting in the ledger.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Through returns the period from ledger inception to end.
func Through(end Date) Period {
	return Period{End: end}
}

func (p Period) Validate() error {
	if p.End.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrInvalidPeriod)
	}
	if !p.Start.IsZero() && p.Start.After(p.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// Contains reports whether d falls inside the period; both bounds are inclusive.
func (p Period) Contains(d Date) bool {
	if !p.Start.IsZero() && d.Before(p.Start) {
		return false
	}
	return !d.After(p.End)
}

func (p Period) String() string {
	if p.Start.IsZero() {
		return "..." + p.End.String()
	}
	return p.Start.String() + "..." + p.End.String()
}
