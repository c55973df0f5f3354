// Package report builds the chat command used to request camera footage.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingID     = errors.New("camera id is required")
	ErrInvalidWindow = errors.New("end of timeframe is before its start")
)

// Footage returns the /report command for a camera and timeframe.
func Footage(id string, start, end time.Time) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	if end.Before(start) {
		return "", fmt.Errorf("%w: %s < %s", ErrInvalidWindow, FormatTime(end), FormatTime(start))
	}
	return fmt.Sprintf("/report I am requesting CCTV footage from CCTV ID: %s with the following timeframe: %s to %s",
		id, FormatTime(start), FormatTime(end)), nil
}

// FormatTime renders a time as "January 2nd, 2006 3:04 PM".
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d %s", t.Month(), t.Day(), ordinal(t.Day()), t.Year(), t.Format("3:04 PM"))
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
