package tours

import (
	"errors"
	"testing"
)

// apply runs actions against a draft, failing the test on any rejection.
func apply(t *testing.T, d Draft, actions ...Action) Draft {
	t.Helper()
	var err error
	for _, a := range actions {
		d, err = Reduce(d, a)
		if err != nil {
			t.Fatalf("Reduce(%T) returned error: %v", a, err)
		}
	}
	return d
}

func checkDensePriorities(t *testing.T, d Draft) {
	t.Helper()
	for i, s := range d.Slots {
		if s.Priority != i+1 {
			t.Fatalf("slot %d has priority %d, want %d", i, s.Priority, i+1)
		}
	}
}

func TestToggleDateSelectsWithMorningDefault(t *testing.T) {
	d := apply(t, NewDraft(), ToggleDate{Date: "2025-06-10"})

	if !d.HasDate("2025-06-10") {
		t.Fatal("date not selected")
	}
	p, ok := d.PeriodFor("2025-06-10")
	if !ok || p != PeriodMorning {
		t.Fatalf("period = %q, want %q", p, PeriodMorning)
	}
}

func TestToggleDateDeselectCascadesSlots(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleDate{Date: "2025-06-12"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-12", Time: "09:30"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
	)

	d = apply(t, d, ToggleDate{Date: "2025-06-10"})

	if d.HasDate("2025-06-10") {
		t.Fatal("date still selected after toggle off")
	}
	if d.SlotCount() != 1 {
		t.Fatalf("SlotCount() = %d, want 1", d.SlotCount())
	}
	if d.Slots[0].Date != "2025-06-12" || d.Slots[0].Priority != 1 {
		t.Fatalf("surviving slot = %+v, want 2025-06-12 priority 1", d.Slots[0])
	}
}

func TestToggleDateLimit(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleDate{Date: "2025-06-11"},
		ToggleDate{Date: "2025-06-12"},
	)

	next, err := Reduce(d, ToggleDate{Date: "2025-06-13"})
	if !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("err = %v, want ErrSelectionLimit", err)
	}
	if len(next.Dates) != MaxSelectedDates {
		t.Fatalf("rejected action changed state: %d dates", len(next.Dates))
	}
}

func TestToggleDateRejectsMalformedDate(t *testing.T) {
	if _, err := Reduce(NewDraft(), ToggleDate{Date: "06/10/2025"}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestSetPeriodClearsSlotsForDate(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleDate{Date: "2025-06-12"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-12", Time: "10:30"},
	)

	d = apply(t, d, SetPeriod{Date: "2025-06-10", Period: PeriodAfternoon})

	if p, _ := d.PeriodFor("2025-06-10"); p != PeriodAfternoon {
		t.Fatalf("period = %q, want afternoon", p)
	}
	if d.SlotCount() != 1 {
		t.Fatalf("SlotCount() = %d, want 1", d.SlotCount())
	}
	if d.Slots[0].Date != "2025-06-12" {
		t.Fatalf("slot for 2025-06-12 was dropped")
	}
	checkDensePriorities(t, d)
}

func TestSetPeriodSameValueKeepsSlots(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
	)

	d = apply(t, d, SetPeriod{Date: "2025-06-10", Period: PeriodMorning})

	if d.SlotCount() != 1 {
		t.Fatalf("no-op period change cleared slots")
	}
}

func TestSetPeriodUnknownDate(t *testing.T) {
	if _, err := Reduce(NewDraft(), SetPeriod{Date: "2025-06-10", Period: PeriodMorning}); !errors.Is(err, ErrUnknownDate) {
		t.Fatalf("err = %v, want ErrUnknownDate", err)
	}
}

func TestToggleSlotAssignsNextPriority(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "10:30"},
	)

	if d.Slots[0].Time != "09:00" || d.Slots[0].Priority != 1 {
		t.Fatalf("first slot = %+v", d.Slots[0])
	}
	if d.Slots[1].Time != "10:30" || d.Slots[1].Priority != 2 {
		t.Fatalf("second slot = %+v", d.Slots[1])
	}
}

func TestToggleSlotDeselectionCompactsRanks(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "09:30"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
	)

	d = apply(t, d, ToggleSlot{Date: "2025-06-10", Time: "09:30"})

	if d.SlotCount() != 2 {
		t.Fatalf("SlotCount() = %d, want 2", d.SlotCount())
	}
	checkDensePriorities(t, d)
	if d.Slots[0].Time != "09:00" || d.Slots[1].Time != "10:00" {
		t.Fatalf("remaining slots out of order: %+v", d.Slots)
	}
}

func TestToggleSlotRejectsOutsidePeriod(t *testing.T) {
	d := apply(t, NewDraft(), ToggleDate{Date: "2025-06-10"})

	// 13:00 belongs to the afternoon window but the date shows morning.
	if _, err := Reduce(d, ToggleSlot{Date: "2025-06-10", Time: "13:00"}); !errors.Is(err, ErrSlotNotOffered) {
		t.Fatalf("err = %v, want ErrSlotNotOffered", err)
	}
	// Not a 30-minute increment.
	if _, err := Reduce(d, ToggleSlot{Date: "2025-06-10", Time: "09:15"}); !errors.Is(err, ErrSlotNotOffered) {
		t.Fatalf("err = %v, want ErrSlotNotOffered", err)
	}
}

func TestToggleSlotTotalLimit(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "09:30"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
	)

	if _, err := Reduce(d, ToggleSlot{Date: "2025-06-10", Time: "10:30"}); !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("err = %v, want ErrSelectionLimit", err)
	}
}

func TestPromoteSlotMovesToFrontAndShiftsRest(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "09:30"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
	)

	d = apply(t, d, PromoteSlot{Index: 2})

	want := []string{"10:00", "09:00", "09:30"}
	for i, clock := range want {
		if d.Slots[i].Time != clock {
			t.Fatalf("slot %d = %q, want %q (all: %+v)", i, d.Slots[i].Time, clock, d.Slots)
		}
	}
	checkDensePriorities(t, d)
}

func TestPromoteSlotTopIsNoOp(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "09:30"},
	)

	next := apply(t, d, PromoteSlot{Index: 0})

	if next.Slots[0].Time != "09:00" || next.Slots[1].Time != "09:30" {
		t.Fatalf("promoting rank 1 reordered slots: %+v", next.Slots)
	}
}

func TestPromoteSlotBadIndex(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
	)

	for _, idx := range []int{-1, 1, 5} {
		if _, err := Reduce(d, PromoteSlot{Index: idx}); !errors.Is(err, ErrInvalidSlotIndex) {
			t.Fatalf("index %d: err = %v, want ErrInvalidSlotIndex", idx, err)
		}
	}
}

func TestResetOrderRestoresInsertionOrder(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "09:30"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
		PromoteSlot{Index: 2},
		PromoteSlot{Index: 1},
	)

	d = apply(t, d, ResetOrder{})

	want := []string{"09:00", "09:30", "10:00"}
	for i, clock := range want {
		if d.Slots[i].Time != clock {
			t.Fatalf("slot %d = %q, want %q", i, d.Slots[i].Time, clock)
		}
	}
	checkDensePriorities(t, d)
}

func TestReduceLeavesInputUntouched(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
	)

	_, _ = Reduce(d, ToggleSlot{Date: "2025-06-10", Time: "09:30"})
	_, _ = Reduce(d, ToggleDate{Date: "2025-06-10"})

	if d.SlotCount() != 1 || !d.HasDate("2025-06-10") {
		t.Fatalf("input draft mutated: %+v", d)
	}
}

func TestPrioritiesStayDenseUnderMixedActions(t *testing.T) {
	d := NewDraft()
	actions := []Action{
		ToggleDate{Date: "2025-06-10"},
		ToggleDate{Date: "2025-06-11"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-11", Time: "11:00"},
		SetPeriod{Date: "2025-06-10", Period: PeriodAfternoon},
		ToggleSlot{Date: "2025-06-10", Time: "13:30"},
		PromoteSlot{Index: 1},
		ToggleSlot{Date: "2025-06-11", Time: "11:00"},
		ResetOrder{},
	}
	for _, a := range actions {
		next, err := Reduce(d, a)
		if err != nil {
			t.Fatalf("Reduce(%T): %v", a, err)
		}
		d = next
		checkDensePriorities(t, d)
	}
}

func TestCandidateSlots(t *testing.T) {
	morning := CandidateSlots(PeriodMorning)
	if len(morning) != 7 {
		t.Fatalf("morning slots = %d, want 7 (%v)", len(morning), morning)
	}
	if morning[0] != "09:00" || morning[len(morning)-1] != "12:00" {
		t.Fatalf("morning window = %v", morning)
	}

	afternoon := CandidateSlots(PeriodAfternoon)
	if len(afternoon) != 9 {
		t.Fatalf("afternoon slots = %d, want 9 (%v)", len(afternoon), afternoon)
	}
	if afternoon[0] != "13:00" || afternoon[len(afternoon)-1] != "17:00" {
		t.Fatalf("afternoon window = %v", afternoon)
	}

	if got := CandidateSlots(Period("evening")); got != nil {
		t.Fatalf("unknown period returned %v", got)
	}
}

func TestTimeSlotsProjection(t *testing.T) {
	d := apply(t, NewDraft(),
		ToggleDate{Date: "2025-06-10"},
		ToggleSlot{Date: "2025-06-10", Time: "09:00"},
		ToggleSlot{Date: "2025-06-10", Time: "10:00"},
	)

	slots := d.TimeSlots()
	if len(slots) != 2 {
		t.Fatalf("TimeSlots() = %v", slots)
	}
	if slots[0] != (TimeSlot{Date: "2025-06-10", Time: "09:00", Priority: 1}) {
		t.Fatalf("slots[0] = %+v", slots[0])
	}

	if NewDraft().TimeSlots() != nil {
		t.Fatal("empty draft should project nil slots")
	}
}
