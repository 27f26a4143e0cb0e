// Package dates parses and formats the loose due dates typed by users.
package dates

import (
	"strings"
	"time"
)

var layouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"Jan 2",
	"Jan 2, 2006",
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// Parse reads s relative to now. Due dates land on the last second of the
// day so a task is overdue only once that day has passed.
func Parse(s string, now time.Time) (time.Time, bool) {
	today := EndOfDay(now)
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "today":
		return today, true
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), true
	case "nextweek":
		return today.AddDate(0, 0, 7), true
	}
	if day, ok := weekdays[s]; ok {
		return NextWeekday(day, now), true
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			// Month names are matched case sensitively
			t, err = time.ParseInLocation(layout, capitalize(s), now.Location())
		}
		if err != nil {
			continue
		}
		year := t.Year()
		if year == 0 {
			year = now.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 23, 59, 59, 0, now.Location()), true
	}
	return time.Time{}, false
}

// NextWeekday returns the end of the next day falling on day, never today
func NextWeekday(day time.Weekday, now time.Time) time.Time {
	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return EndOfDay(now).AddDate(0, 0, daysUntil)
}

// EndOfDay returns 23:59:59 on t's calendar day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Format renders t relative to now
func Format(t, now time.Time) string {
	t = t.In(now.Location())
	if sameDay(t, now) {
		return "today"
	}
	if sameDay(t, now.AddDate(0, 0, 1)) {
		return "tomorrow"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "yesterday"
	}
	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
