package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

const week = 7 * 24 * time.Hour

var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: time.Second},
	{D: time.Hour, Format: "%d min %s", DivBy: time.Minute},
	{D: 24 * time.Hour, Format: "%d h %s", DivBy: time.Hour},
	{D: week, Format: "%d d %s", DivBy: 24 * time.Hour},
}

// RelativeTime renders t relative to now for posts, comments and messages:
// "just now" under a minute, then minutes, hours and days up to a week, then
// an absolute date whose year is shown only when it differs from now's.
// Timestamps ahead of now (clock skew) count as "just now".
func RelativeTime(t, now time.Time) string {
	if !t.Before(now) {
		return "just now"
	}
	if now.Sub(t) >= week {
		local := t.In(now.Location())
		if local.Year() == now.Year() {
			return local.Format("Jan 2")
		}
		return local.Format("Jan 2, 2006")
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", relMagnitudes)
}

// ClockTime is the short hh:mm form used inside an open conversation.
func ClockTime(t time.Time) string {
	return t.Local().Format("15:04")
}
