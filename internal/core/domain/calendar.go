package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"payment-forecast/pkg/apperror"
)

// settlementCutoffHour is the UTC hour-of-day at and after which a due
// payment settles on the following calendar day.
const settlementCutoffHour = 16

// CalendarDay is the aggregation bucket key: a plain year/month/day with
// structural equality, usable directly as a map key. Month is 0-based
// (January = 0), matching the feed's business convention.
type CalendarDay struct {
	Year  int
	Month int
	Day   int
}

// Compare orders days ascending by year, then month, then day. It returns
// -1, 0 or +1.
func (d CalendarDay) Compare(other CalendarDay) int {
	if d.Year != other.Year {
		if d.Year < other.Year {
			return -1
		}
		return 1
	}
	if d.Month != other.Month {
		if d.Month < other.Month {
			return -1
		}
		return 1
	}
	if d.Day != other.Day {
		if d.Day < other.Day {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDay) Before(other CalendarDay) bool {
	return d.Compare(other) < 0
}

// String formats the day as an ISO date, e.g. "2017-05-01".
func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month+1, d.Day)
}

// Pretty formats the day for the report table, e.g. "1 May 2017".
func (d CalendarDay) Pretty() string {
	return fmt.Sprintf("%d %s %d", d.Day, time.Month(d.Month+1).String()[:3], d.Year)
}

// dayOf converts a UTC instant to its calendar date.
func dayOf(t time.Time) CalendarDay {
	t = t.UTC()
	return CalendarDay{
		Year:  t.Year(),
		Month: int(t.Month()) - 1,
		Day:   t.Day(),
	}
}

// ParseUTCTimestamp parses a feed timestamp of the form
// "YYYY-MM-DDTHH:MM:SS" followed by a single trailing zone marker that is
// stripped. A layout-based parse cannot express the arbitrary trailing
// character, so the fields are split out by hand.
func ParseUTCTimestamp(text string) (time.Time, error) {
	tIndex := strings.IndexByte(text, 'T')
	if tIndex == -1 || tIndex+1 >= len(text) {
		return time.Time{}, apperror.ErrInvalidTimestamp(text)
	}

	datePart := text[:tIndex]
	timePart := text[tIndex+1 : len(text)-1]

	ymd := strings.Split(datePart, "-")
	hms := strings.Split(timePart, ":")
	if len(ymd) != 3 || len(hms) != 3 {
		return time.Time{}, apperror.ErrInvalidTimestamp(text)
	}

	parts := make([]int, 0, 6)
	for _, segment := range append(ymd, hms...) {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return time.Time{}, apperror.ErrInvalidTimestamp(text)
		}
		parts = append(parts, n)
	}

	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC), nil
}

// ParseEpochSeconds parses integer seconds since the Unix epoch.
func ParseEpochSeconds(text string) (time.Time, error) {
	seconds, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return time.Time{}, apperror.ErrInvalidEpoch(text)
	}
	return time.Unix(seconds, 0).UTC(), nil
}

// ResolveSettlementDay validates the three temporal fields of a record
// against each other and derives the forecast day for its payment:
//
//  1. received and due-UTC must both parse;
//  2. received must not be after due-UTC;
//  3. due-epoch must parse and denote the identical instant as due-UTC;
//  4. the forecast day is the UTC date of the due instant, advanced by one
//     calendar day when the due hour is at or past the 4 PM cutoff.
func ResolveSettlementDay(receivedText, dueText, dueEpochText string) (CalendarDay, error) {
	received, err := ParseUTCTimestamp(receivedText)
	if err != nil {
		return CalendarDay{}, err
	}
	dueUTC, err := ParseUTCTimestamp(dueText)
	if err != nil {
		return CalendarDay{}, err
	}
	if received.After(dueUTC) {
		return CalendarDay{}, apperror.ErrReceivedAfterDue(receivedText, dueText)
	}

	dueEpoch, err := ParseEpochSeconds(dueEpochText)
	if err != nil {
		return CalendarDay{}, err
	}
	if !dueUTC.Equal(dueEpoch) {
		return CalendarDay{}, apperror.ErrDueTimeMismatch(dueText, dueUTC.Unix(), dueEpoch.Unix())
	}

	// Due time at or after 4pm settles the next day. AddDate handles
	// month and year rollover.
	if dueEpoch.Hour() >= settlementCutoffHour {
		dueEpoch = dueEpoch.AddDate(0, 0, 1)
	}

	return dayOf(dueEpoch), nil
}
