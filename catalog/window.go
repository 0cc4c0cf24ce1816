package catalog

import "time"

// searchWindow is the clamped time range submitted to the catalog
type searchWindow struct {
	Start time.Time
	End   time.Time
}

const searchWindowDays = 15

// windowAround builds the target date ± 15 day window, clamping the end so
// it never exceeds today. The second return is false when the clamped window
// inverts (target far enough in the future): a valid, expected outcome that
// must short-circuit the search without any network call.
func windowAround(target time.Time, today time.Time) (searchWindow, bool) {
	startDay := dateOnly(target.AddDate(0, 0, -searchWindowDays))
	endDay := dateOnly(target.AddDate(0, 0, searchWindowDays))
	todayDay := dateOnly(today)
	if endDay.After(todayDay) {
		endDay = todayDay
	}
	if startDay.After(endDay) {
		return searchWindow{}, false
	}
	return searchWindow{Start: startDay, End: endDay}, true
}

// Interval renders the window as a closed RFC 3339 interval covering full days
func (w searchWindow) Interval() string {
	return w.Start.Format("2006-01-02") + "T00:00:00Z/" + w.End.Format("2006-01-02") + "T23:59:59Z"
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
