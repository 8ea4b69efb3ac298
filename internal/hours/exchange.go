package hours

import (
	"time"

	"github.com/scmhub/calendar"
	"github.com/yanun0323/logs"
)

// Exchange answers tradable-hours questions for one market. It wraps a
// scmhub/calendar MIC calendar; an unknown market name resolves to the
// NYSE calendar. ForMarket falls back to a Mon-Fri 09:30-16:00 New York
// schedule only when the library returns no calendar at all.
type Exchange struct {
	cal      *calendar.Calendar
	fallback bool
	loc      *time.Location
}

// Regular and extended session bounds used by the fallback schedule and by
// extended-hours checks (the calendar library only models the regular
// session).
const (
	regularOpenHour   = 9
	regularOpenMinute = 30
	regularCloseHour  = 16
	extendedOpenHour  = 4
	extendedCloseHour = 20
)

// micByMarket maps feed market names to ISO 10383 MIC codes understood by
// scmhub/calendar.
var micByMarket = map[string]string{
	"usa":       "xnys",
	"london":    "xlon",
	"paris":     "xpar",
	"frankfurt": "xfra",
	"amsterdam": "xams",
	"milan":     "xmil",
	"madrid":    "xmad",
	"stockholm": "xsto",
	"zurich":    "xswx",
	"toronto":   "xtse",
	"tokyo":     "xtks",
	"hongkong":  "xhkg",
	"sydney":    "xasx",
}

// ForMarket resolves the exchange schedule for a market name.
func ForMarket(market string) *Exchange {
	mic, ok := micByMarket[market]
	if !ok {
		mic = "xnys"
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		logs.Warnf("no calendar for market %q, using Mon-Fri fallback", market)
		return NewFallback(newYork())
	}
	return &Exchange{cal: cal, loc: cal.Loc}
}

// NewFallback builds a Mon-Fri 09:30-16:00 schedule in the given location.
func NewFallback(loc *time.Location) *Exchange {
	if loc == nil {
		loc = time.UTC
	}
	return &Exchange{fallback: true, loc: loc}
}

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the exchange time zone.
func (e *Exchange) Location() *time.Location { return e.loc }

// IsTradableDate reports whether the exchange opens at all on t's date.
func (e *Exchange) IsTradableDate(t time.Time) bool {
	t = t.In(e.loc)
	if e.fallback {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return e.cal.IsBusinessDay(t)
}

// IsOpen reports whether the market trades at instant t. Extended includes
// the pre/post sessions.
func (e *Exchange) IsOpen(t time.Time, extended bool) bool {
	t = t.In(e.loc)
	if !e.IsTradableDate(t) {
		return false
	}
	if extended {
		return t.Hour() >= extendedOpenHour && t.Hour() < extendedCloseHour
	}
	if !e.fallback {
		return e.cal.IsOpen(t)
	}
	h, m := t.Hour(), t.Minute()
	if h < regularOpenHour || (h == regularOpenHour && m < regularOpenMinute) {
		return false
	}
	return h < regularCloseHour
}

// IsOpenDuringBar reports whether a bar [start, end) counts as in session.
// Only the bar's opening instant decides, which keeps the last bar of the day
// (close-increment, close) and rejects the first one after the close.
func (e *Exchange) IsOpenDuringBar(start, _ time.Time, extended bool) bool {
	return e.IsOpen(start, extended)
}

// nextBarEndCap bounds the search for the next in-session bar. At minute
// resolution this covers multi-week exchange closures.
const nextBarEndCap = 1 << 16

// NextBarEnd returns the end time of the first bar after prevEnd whose span
// lies inside tradable hours. Daily bars align to tradable dates.
func (e *Exchange) NextBarEnd(prevEnd time.Time, increment time.Duration, extended bool) time.Time {
	if increment <= 0 {
		return prevEnd
	}
	if increment >= 24*time.Hour {
		return e.nextDailyBarEnd(prevEnd)
	}
	candidate := prevEnd.Add(increment)
	for i := 0; i < nextBarEndCap; i++ {
		start := candidate.Add(-increment)
		if e.IsOpenDuringBar(start, candidate, extended) {
			return candidate
		}
		candidate = candidate.Add(increment)
	}
	return candidate
}

func (e *Exchange) nextDailyBarEnd(prevEnd time.Time) time.Time {
	t := prevEnd.In(e.loc)
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
	for i := 0; i < nextBarEndCap; i++ {
		date = date.AddDate(0, 0, 1)
		if e.IsTradableDate(date) {
			return date.AddDate(0, 0, 1)
		}
	}
	return date
}

// PreviousTradableDate returns the last tradable date strictly before t.
func (e *Exchange) PreviousTradableDate(t time.Time) time.Time {
	t = t.In(e.loc)
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
	for i := 0; i < nextBarEndCap; i++ {
		date = date.AddDate(0, 0, -1)
		if e.IsTradableDate(date) {
			return date
		}
	}
	return date
}

// HasTradableDateBetween reports whether any date in [start, end] opens.
func (e *Exchange) HasTradableDateBetween(start, end time.Time) bool {
	if end.Before(start) {
		return false
	}
	s := start.In(e.loc)
	date := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, e.loc)
	for !date.After(end.In(e.loc)) {
		if e.IsTradableDate(date) {
			return true
		}
		date = date.AddDate(0, 0, 1)
	}
	return false
}
