package timeslot

import (
	"fmt"
	"time"
)

// DayTime is a wall-clock time of day.
type DayTime struct {
	Hour   int
	Minute int
}

func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// At anchors the time of day on the calendar day of ref, in ref's location.
func (t DayTime) At(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// Before orders two times of day chronologically.
func (t DayTime) Before(other DayTime) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}

	return t.Minute < other.Minute
}

func (t DayTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Slot is a configured pickup/delivery time with its administrative flag.
type Slot struct {
	ID      int64   `json:"id"`
	Time    DayTime `json:"time"`
	Enabled bool    `json:"enabled"`
}

// Offer is a slot currently offerable to the customer. The ASAP pseudo-slot
// has no time.
type Offer struct {
	ASAP   bool     `json:"asap"`
	SlotID int64    `json:"slotId,omitempty"`
	Time   *DayTime `json:"time,omitempty"`
}

// DefaultLadder is the fallback slot list used when no slots are configured:
// 18:00 through 21:00 in 15-minute increments, all enabled.
func DefaultLadder() []Slot {
	var slots []Slot
	for h := 18; h <= 21; h++ {
		for m := 0; m < 60; m += 15 {
			if h == 21 && m > 0 {
				break
			}
			slots = append(slots, Slot{Time: DayTime{Hour: h, Minute: m}, Enabled: true})
		}
	}

	return slots
}

// Admit reports whether t is an acceptable requested time right now: it must
// still lie at least lead away and land on an enabled slot. The lead boundary
// is inclusive, matching Offerable. An empty slot list falls back to the
// default ladder, so admission and the offers shown to the customer always
// agree.
func Admit(slots []Slot, t, now time.Time, lead time.Duration) bool {
	if t.Sub(now) < lead {
		return false
	}

	if len(slots) == 0 {
		slots = DefaultLadder()
	}

	want := DayTime{Hour: t.Hour(), Minute: t.Minute()}
	for _, s := range slots {
		if s.Enabled && s.Time == want {
			return true
		}
	}

	return false
}

// Offerable computes the slots a customer may select right now. A slot is
// eligible when it is enabled and lies at least lead away from now; the
// boundary is inclusive, so a slot at exactly now+lead is still offered.
// Output is chronological with ASAP first when enabled.
func Offerable(slots []Slot, now time.Time, lead time.Duration, asapEnabled bool) []Offer {
	if len(slots) == 0 {
		slots = DefaultLadder()
	}

	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Time.Before(sorted[j-1].Time); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	offers := make([]Offer, 0, len(sorted)+1)
	if asapEnabled {
		offers = append(offers, Offer{ASAP: true})
	}

	for _, s := range sorted {
		if !s.Enabled {
			continue
		}
		if s.Time.At(now).Sub(now) < lead {
			continue
		}
		t := s.Time
		offers = append(offers, Offer{SlotID: s.ID, Time: &t})
	}

	return offers
}
