package solclient

import (
	"time"

	"commonerchain/program"
)

// UpcomingDates returns the midnight-UTC unix timestamps a lister may pick
// from: tomorrow through the listing window, minus dates already taken.
func UpcomingDates(now time.Time, taken map[int64]bool) []int64 {
	today := program.StartOfDay(now.Unix())

	dates := make([]int64, 0, ListingWindowDays)
	for i := 1; i <= ListingWindowDays; i++ {
		date := today + int64(i)*program.SecondsPerDay
		if taken[date] {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// FormatDate renders a slot date for display.
func FormatDate(unixDate int64) string {
	return time.Unix(unixDate, 0).UTC().Format("2006-01-02")
}
