// Package effort converts task size classes into working days and projects
// durations across the calendar, skipping weekends and per-engineer
// unavailability.
package effort

import (
	"math"

	"github.com/me/roadmap/pkg/model"
)

// baseDays maps each integer size class to its base duration in working
// days, assuming a fully available engineer.
var baseDays = map[int]int{
	1: 1,
	2: 3,
	3: 5,
	4: 10,
	5: 20,
}

// Estimate is the effort required for one task by one engineer.
type Estimate struct {
	// Days is the effort in whole working days after dividing the base
	// duration by the engineer's availability fraction.
	Days int

	// ZeroEffort is set for tracking tasks that consume no engineer time.
	ZeroEffort bool

	// WasEstimated is set when the task had no size and the default class
	// was assumed.
	WasEstimated bool
}

// ForTask computes the effort estimate for a task when worked by the given
// engineer.
func ForTask(t *model.Task, eng *model.Engineer) Estimate {
	if t.ZeroEffort {
		return Estimate{ZeroEffort: true}
	}

	size := t.Size
	estimated := false
	if !t.HasSize() {
		size = model.DefaultSizeClass
		estimated = true
	}

	base := baseDuration(size)

	availability := 1.0
	if eng != nil && eng.Availability > 0 && eng.Availability <= 1 {
		availability = eng.Availability
	}

	days := int(math.Ceil(float64(base) / availability))
	return Estimate{Days: days, WasEstimated: estimated}
}

// baseDuration looks up the base working days for a size class, linearly
// interpolating between adjacent integer classes for fractional sizes and
// rounding up.
func baseDuration(size float64) int {
	if size <= model.SizeClassMin {
		return baseDays[model.SizeClassMin]
	}
	if size >= model.SizeClassMax {
		return baseDays[model.SizeClassMax]
	}

	lo := int(math.Floor(size))
	hi := int(math.Ceil(size))
	if lo == hi {
		return baseDays[lo]
	}

	frac := size - float64(lo)
	interp := float64(baseDays[lo]) + frac*float64(baseDays[hi]-baseDays[lo])
	return int(math.Ceil(interp))
}

// ProjectForward advances start by the given number of working days for the
// engineer, skipping weekends and any date inside an unavailability range.
// Zero days returns start unchanged. The returned date is the last day of
// work, with start itself counting as the first candidate day.
func ProjectForward(start model.Date, days int, eng *model.Engineer) model.Date {
	if days <= 0 {
		return start
	}

	cur := start
	remaining := days
	for {
		if workable(cur, eng) {
			remaining--
			if remaining == 0 {
				return cur
			}
		}
		cur = cur.AddDays(1)
	}
}

// NextWorkingDay returns d if the engineer can work that date, otherwise the
// first later date they can.
func NextWorkingDay(d model.Date, eng *model.Engineer) model.Date {
	for !workable(d, eng) {
		d = d.AddDays(1)
	}
	return d
}

func workable(d model.Date, eng *model.Engineer) bool {
	if d.IsWeekend() {
		return false
	}
	if eng != nil && eng.UnavailableOn(d) {
		return false
	}
	return true
}
