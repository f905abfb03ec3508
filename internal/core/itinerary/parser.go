// Package itinerary parses human-pasted itinerary share texts into
// leg specifications ready for resolution.
package itinerary

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

var (
	blankLineRe = regexp.MustCompile(`(?:\r?\n){2,}`)
	lineBreakRe = regexp.MustCompile(`(?:\r?\n)+`)
	dateRe      = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)`)
)

// LegSpec is one parsed travel leg, still unresolved against the
// journey provider.
type LegSpec struct {
	DepartureScheduled time.Time
	OriginName         string
	ArrivalScheduled   time.Time
	DestinationName    string
}

// Itinerary is the result of parsing one pasted share text.
type Itinerary struct {
	Date time.Time
	Legs []LegSpec
}

// Parse splits text into a header block and one block per leg. The
// header's second line carries the trip date (DD.MM.YYYY); each leg
// block carries the departure on line index 2 and the arrival on line
// index 3 as "<prefix> HH:MM <station name>, ...". Timestamps are
// built in loc, the civil timezone of the schedule.
func Parse(text string, loc *time.Location) (*Itinerary, error) {
	blocks := blankLineRe.Split(strings.TrimSpace(text), -1)
	if len(blocks) < 2 {
		return nil, fmt.Errorf("%w: journey is missing or too short", domain.ErrMalformedInput)
	}

	header := lineBreakRe.Split(strings.TrimSpace(blocks[0]), -1)
	if len(header) < 2 || !dateRe.MatchString(header[1]) {
		return nil, fmt.Errorf("%w: date is missing or in the wrong format", domain.ErrMalformedInput)
	}
	date, err := time.ParseInLocation("2.1.2006", header[1], loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date is missing or in the wrong format", domain.ErrMalformedInput)
	}

	it := &Itinerary{Date: date}
	for _, block := range blocks[1:] {
		lines := lineBreakRe.Split(strings.TrimSpace(block), -1)
		if len(lines) < 4 {
			return nil, fmt.Errorf("%w: segment lines are missing or in the wrong format", domain.ErrMalformedInput)
		}

		depTime, depStation, err := parseStopLine(lines[2], date, loc)
		if err != nil {
			return nil, err
		}
		arrTime, arrStation, err := parseStopLine(lines[3], date, loc)
		if err != nil {
			return nil, err
		}

		it.Legs = append(it.Legs, LegSpec{
			DepartureScheduled: depTime,
			OriginName:         depStation,
			ArrivalScheduled:   arrTime,
			DestinationName:    arrStation,
		})
	}

	return it, nil
}

// parseStopLine extracts the HH:MM time and station name from a
// departure or arrival line. Everything after the first comma (track
// info etc.) is ignored.
func parseStopLine(line string, date time.Time, loc *time.Location) (time.Time, string, error) {
	fields := strings.Fields(strings.SplitN(line, ",", 2)[0])
	if len(fields) < 3 {
		return time.Time{}, "", fmt.Errorf("%w: stop line %q is too short", domain.ErrMalformedInput, line)
	}

	tod, err := time.Parse("15:04", fields[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: time %q does not parse", domain.ErrMalformedInput, fields[1])
	}

	ts := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
	return ts, strings.Join(fields[2:], " "), nil
}
