package domain

import (
	"fmt"
	"time"
)

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in the storage format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

type Employee struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`
	Position  string `db:"position" json:"position"`
	Login     string `db:"login" json:"login"`
	Password  string `db:"password" json:"-"`
	HiredOn   string `db:"hired_on" json:"hired_on"`
	IsAdmin   bool   `db:"is_admin" json:"is_admin"`
}

// Experience reports whole years of service as of now: the calendar
// year difference, minus one if the hire anniversary has not yet
// passed this year.
func (e Employee) Experience(now time.Time) (int, error) {
	hired, err := ParseDate(e.HiredOn)
	if err != nil {
		return 0, err
	}
	years := now.Year() - hired.Year()
	if now.Month() < hired.Month() ||
		(now.Month() == hired.Month() && now.Day() < hired.Day()) {
		years--
	}
	return years, nil
}
