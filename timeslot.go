// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"fmt"
	"time"
)

// Activities never run between 4AM and 8AM, so shifting an instant back
// by 6 hours lands a session crossing midnight on the day it started.
const dayShift = 6 * time.Hour

// TimeSlot is an immutable half-open interval [Start, End). A slot may
// cross midnight but must fit in one normalized calendar day; a slot
// crossing midnight belongs to the day of its 6-hours-earlier reference
// point. Two slots are equal iff their start and end instants are equal.
type TimeSlot struct {
	start, end time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, fmt.Errorf("time slot starts at %v but ends at %v", start, end)
	}
	if !normDay(start).Equal(normDay(end)) {
		return TimeSlot{}, fmt.Errorf("time slot %v - %v spans more than one day", start, end)
	}
	return TimeSlot{start: start, end: end}, nil
}

func normDay(t time.Time) time.Time {
	d := t.Add(-dayShift)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func (s TimeSlot) Start() time.Time { return s.start }
func (s TimeSlot) End() time.Time   { return s.end }

// Day is the normalized calendar day the slot belongs to, at midnight.
func (s TimeSlot) Day() time.Time { return normDay(s.start) }

func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.start.Before(o.end) && o.start.Before(s.end)
}

// NightThenMorning reports whether o is on the day right after s and
// starts within 12 hours of s ending.
func (s TimeSlot) NightThenMorning(o TimeSlot) bool {
	if !o.Day().Equal(s.Day().AddDate(0, 0, 1)) {
		return false
	}
	return o.start.Sub(s.end) <= 12*time.Hour
}

func (s TimeSlot) String() string {
	return s.start.Format("02/01 15:04") + "-" + s.end.Format("15:04")
}
