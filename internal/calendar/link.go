// Package calendar builds Google Calendar "create event" links for booked
// appointments. No API credentials are involved: the link pre-fills the
// event form in the user's own calendar.
package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const renderBase = "https://calendar.google.com/calendar/render?action=TEMPLATE"

// Date layouts accepted from user-supplied or model-supplied values.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006",
	"2 Jan 2006", "2 January 2006", "Jan 2 2006", "January 2 2006",
	"20060102",
}

// Time-of-day layouts accepted.
var timeLayouts = []string{
	"15:04:05", "15:04", "3:04 PM", "3 PM", "15h04",
}

// Builder constructs event links. Parsed datetimes are interpreted in the
// configured location and converted to UTC for the link.
type Builder struct {
	loc *time.Location
}

// NewBuilder returns a Builder anchored to the given timezone; nil means
// UTC.
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{loc: loc}
}

// EventLink builds a link for a timed event of the given duration. An
// empty timeOfDay defaults to midnight.
func (b *Builder) EventLink(title, date, timeOfDay string, durationMinutes int, details, location string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("calendar link: empty title")
	}

	day, err := parseDate(date)
	if err != nil {
		return "", err
	}
	tod := time.Time{}
	if strings.TrimSpace(timeOfDay) != "" {
		tod, err = parseTimeOfDay(timeOfDay)
		if err != nil {
			return "", err
		}
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, b.loc)
	if durationMinutes <= 0 {
		durationMinutes = 30
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	dates := utcZ(start) + "/" + utcZ(end)
	return renderLink(title, dates, details, location), nil
}

// AllDayLink builds a link for an all-day event. Google expects
// YYYYMMDD/YYYYMMDD with an exclusive end date.
func (b *Builder) AllDayLink(title, date, details, location string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("calendar link: empty title")
	}
	day, err := parseDate(date)
	if err != nil {
		return "", err
	}
	dates := day.Format("20060102") + "/" + day.AddDate(0, 0, 1).Format("20060102")
	return renderLink(title, dates, details, location), nil
}

func renderLink(title, dates, details, location string) string {
	params := url.Values{}
	params.Set("text", title)
	params.Set("dates", dates)
	if details != "" {
		params.Set("details", details)
	}
	if location != "" {
		params.Set("location", location)
	}
	return renderBase + "&" + params.Encode()
}

func utcZ(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func parseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, date); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("calendar link: unparseable date %q", date)
}

func parseTimeOfDay(tod string) (time.Time, error) {
	tod = strings.TrimSpace(tod)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, tod); err == nil {
			return t, nil
		}
	}
	// Compact numeric form, e.g. "930" or "1430".
	if isDigits(tod) && (len(tod) == 3 || len(tod) == 4) {
		padded := tod
		if len(padded) == 3 {
			padded = "0" + padded
		}
		if t, err := time.Parse("1504", padded); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("calendar link: unparseable time %q", tod)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
