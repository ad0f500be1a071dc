package tours

// Draft is the in-progress, unpersisted selection state: which dates are
// chosen, which half-day period each date shows, and the ranked slots. All
// mutations go through Reduce, which returns a new Draft and never touches
// the input, so a rejected action leaves the caller's state intact.
type Draft struct {
	Dates []SelectedDate
	Slots []SelectedSlot

	nextSeq int
}

// SelectedDate pairs a chosen calendar date with its displayed period.
type SelectedDate struct {
	Date   string
	Period Period
}

// SelectedSlot is a chosen (date, time) pair. The Slots slice is kept in
// priority order, so Priority is always index+1. seq remembers insertion
// order so ResetOrder can restore it after promotions.
type SelectedSlot struct {
	Date     string
	Time     string
	Priority int

	seq int
}

// NewDraft returns an empty selection.
func NewDraft() Draft {
	return Draft{}
}

// Action is a draft mutation understood by Reduce.
type Action interface {
	isAction()
}

// ToggleDate selects a date (default period morning) or deselects it,
// cascading removal of its slots.
type ToggleDate struct {
	Date string
}

// SetPeriod switches which half-day's candidate slots a date shows. Any
// slots already chosen for the date are cleared, since the offered slot set
// changes.
type SetPeriod struct {
	Date   string
	Period Period
}

// ToggleSlot selects or deselects a (date, time) pair.
type ToggleSlot struct {
	Date string
	Time string
}

// PromoteSlot moves the slot at Index (priority order) to rank 1.
type PromoteSlot struct {
	Index int
}

// ResetOrder re-ranks slots by their original insertion order.
type ResetOrder struct{}

func (ToggleDate) isAction()  {}
func (SetPeriod) isAction()   {}
func (ToggleSlot) isAction()  {}
func (PromoteSlot) isAction() {}
func (ResetOrder) isAction()  {}

// Reduce applies a to d, returning the next state. On error the returned
// Draft equals the input.
func Reduce(d Draft, a Action) (Draft, error) {
	switch act := a.(type) {
	case ToggleDate:
		return d.toggleDate(act.Date)
	case SetPeriod:
		return d.setPeriod(act.Date, act.Period)
	case ToggleSlot:
		return d.toggleSlot(act.Date, act.Time)
	case PromoteSlot:
		return d.promoteSlot(act.Index)
	case ResetOrder:
		return d.resetOrder(), nil
	default:
		return d, nil
	}
}

// HasDate reports whether date is currently selected.
func (d Draft) HasDate(date string) bool {
	_, ok := d.dateIndex(date)
	return ok
}

// PeriodFor returns the displayed period for a selected date.
func (d Draft) PeriodFor(date string) (Period, bool) {
	if i, ok := d.dateIndex(date); ok {
		return d.Dates[i].Period, true
	}
	return "", false
}

// SlotCount returns the total number of chosen slots.
func (d Draft) SlotCount() int {
	return len(d.Slots)
}

func (d Draft) dateIndex(date string) (int, bool) {
	for i, sd := range d.Dates {
		if sd.Date == date {
			return i, true
		}
	}
	return 0, false
}

func (d Draft) slotIndex(date, clock string) (int, bool) {
	for i, s := range d.Slots {
		if s.Date == date && s.Time == clock {
			return i, true
		}
	}
	return 0, false
}

func (d Draft) slotCountForDate(date string) int {
	n := 0
	for _, s := range d.Slots {
		if s.Date == date {
			n++
		}
	}
	return n
}

func (d Draft) clone() Draft {
	next := Draft{nextSeq: d.nextSeq}
	if len(d.Dates) > 0 {
		next.Dates = append([]SelectedDate(nil), d.Dates...)
	}
	if len(d.Slots) > 0 {
		next.Slots = append([]SelectedSlot(nil), d.Slots...)
	}
	return next
}

func (d Draft) toggleDate(date string) (Draft, error) {
	if !validDate(date) {
		return d, ErrInvalidDate
	}

	if i, ok := d.dateIndex(date); ok {
		next := d.clone()
		next.Dates = append(next.Dates[:i], next.Dates[i+1:]...)
		next.removeSlotsForDate(date)
		return next, nil
	}

	if len(d.Dates) >= MaxSelectedDates {
		return d, ErrSelectionLimit
	}

	next := d.clone()
	next.Dates = append(next.Dates, SelectedDate{Date: date, Period: PeriodMorning})
	return next, nil
}

func (d Draft) setPeriod(date string, p Period) (Draft, error) {
	if !p.Valid() {
		return d, ErrInvalidPeriod
	}
	i, ok := d.dateIndex(date)
	if !ok {
		return d, ErrUnknownDate
	}
	if d.Dates[i].Period == p {
		return d, nil
	}

	next := d.clone()
	next.Dates[i].Period = p
	next.removeSlotsForDate(date)
	return next, nil
}

func (d Draft) toggleSlot(date, clock string) (Draft, error) {
	i, ok := d.dateIndex(date)
	if !ok {
		return d, ErrUnknownDate
	}

	if j, chosen := d.slotIndex(date, clock); chosen {
		next := d.clone()
		next.Slots = append(next.Slots[:j], next.Slots[j+1:]...)
		next.densify()
		return next, nil
	}

	if !slotOffered(d.Dates[i].Period, clock) {
		return d, ErrSlotNotOffered
	}
	if len(d.Slots) >= MaxTimeSlots || d.slotCountForDate(date) >= MaxSlotsPerDate {
		return d, ErrSelectionLimit
	}

	next := d.clone()
	next.Slots = append(next.Slots, SelectedSlot{
		Date:     date,
		Time:     clock,
		Priority: len(next.Slots) + 1,
		seq:      next.nextSeq,
	})
	next.nextSeq++
	return next, nil
}

func (d Draft) promoteSlot(index int) (Draft, error) {
	if index < 0 || index >= len(d.Slots) {
		return d, ErrInvalidSlotIndex
	}
	if index == 0 {
		return d, nil
	}

	next := d.clone()
	promoted := next.Slots[index]
	copy(next.Slots[1:index+1], next.Slots[:index])
	next.Slots[0] = promoted
	next.densify()
	return next, nil
}

func (d Draft) resetOrder() Draft {
	next := d.clone()
	// Insertion sort by seq; at most three slots.
	for i := 1; i < len(next.Slots); i++ {
		for j := i; j > 0 && next.Slots[j-1].seq > next.Slots[j].seq; j-- {
			next.Slots[j-1], next.Slots[j] = next.Slots[j], next.Slots[j-1]
		}
	}
	next.densify()
	return next
}

// removeSlotsForDate drops every slot on date and re-densifies. Mutates the
// receiver; callers operate on a clone.
func (d *Draft) removeSlotsForDate(date string) {
	kept := d.Slots[:0]
	for _, s := range d.Slots {
		if s.Date != date {
			kept = append(kept, s)
		}
	}
	d.Slots = kept
	d.densify()
}

// densify renumbers priorities 1..N in current list order.
func (d *Draft) densify() {
	for i := range d.Slots {
		d.Slots[i].Priority = i + 1
	}
}

// TimeSlots projects the draft's slots into the persisted form.
func (d Draft) TimeSlots() []TimeSlot {
	if len(d.Slots) == 0 {
		return nil
	}
	out := make([]TimeSlot, len(d.Slots))
	for i, s := range d.Slots {
		out[i] = TimeSlot{Date: s.Date, Time: s.Time, Priority: s.Priority}
	}
	return out
}

// SelectedDateStrings returns the chosen dates in selection order.
func (d Draft) SelectedDateStrings() []string {
	if len(d.Dates) == 0 {
		return nil
	}
	out := make([]string, len(d.Dates))
	for i, sd := range d.Dates {
		out[i] = sd.Date
	}
	return out
}
