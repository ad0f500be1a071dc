package tours

import "time"

// Period is the half-day bucket used to narrow the offered slot set.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	return p == PeriodMorning || p == PeriodAfternoon
}

// Period windows, inclusive on both ends.
var periodWindows = map[Period]struct{ start, end string }{
	PeriodMorning:   {"09:00", "12:00"},
	PeriodAfternoon: {"13:00", "17:00"},
}

// CandidateSlots returns the offered clock values for a period as 30-minute
// increments over its window, endpoints included. Unknown periods yield nil.
func CandidateSlots(p Period) []string {
	window, ok := periodWindows[p]
	if !ok {
		return nil
	}
	start, err := time.Parse(TimeLayout, window.start)
	if err != nil {
		return nil
	}
	end, err := time.Parse(TimeLayout, window.end)
	if err != nil {
		return nil
	}

	var slots []string
	for t := start; !t.After(end); t = t.Add(30 * time.Minute) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots
}

// slotOffered reports whether clock is one of the candidate slots for p.
func slotOffered(p Period, clock string) bool {
	for _, s := range CandidateSlots(p) {
		if s == clock {
			return true
		}
	}
	return false
}

// validDate reports whether date parses as YYYY-MM-DD.
func validDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}
