// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/someonegg/actmatch"
)

// A slot column header reads "<weekday> DD/MM <part>". The night part
// names the morning's date: "monday 26/08 night" is 00:00-03:59 on the
// 26th, which day-normalizes to sunday evening's day.
var slotColumnRe = regexp.MustCompile(`^(\p{L}+) (\d{2})/(\d{2}) (morning|afternoon|evening|night)$`)

var slotHours = map[string][2]string{
	"morning":   {"08:00", "13:00"},
	"afternoon": {"13:00", "18:00"},
	"evening":   {"18:00", "23:59"},
	"night":     {"00:00", "03:59"},
}

// ParseSlotColumn maps a column header to its TimeSlot. ok is false when
// the header is not a slot column at all.
func ParseSlotColumn(name string, year int) (slot actmatch.TimeSlot, ok bool, err error) {
	m := slotColumnRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(name)))
	if m == nil {
		return actmatch.TimeSlot{}, false, nil
	}

	day, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	hours := slotHours[m[4]]

	start, err := atHour(year, month, day, hours[0])
	if err != nil {
		return actmatch.TimeSlot{}, true, fmt.Errorf("column %q: %w", name, err)
	}
	end, err := atHour(year, month, day, hours[1])
	if err != nil {
		return actmatch.TimeSlot{}, true, fmt.Errorf("column %q: %w", name, err)
	}

	if wd := strings.ToLower(start.Weekday().String()); wd != m[1] {
		return actmatch.TimeSlot{}, true,
			fmt.Errorf("column %q: %02d/%02d is a %s", name, day, month, wd)
	}

	slot, err = actmatch.NewTimeSlot(start, end)
	if err != nil {
		return actmatch.TimeSlot{}, true, fmt.Errorf("column %q: %w", name, err)
	}
	return slot, true, nil
}

func atHour(year, month, day int, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// ParseSlotColumns keeps every header that is a slot column, mapped to
// its TimeSlot.
func ParseSlotColumns(names []string, year int) (map[string]actmatch.TimeSlot, error) {
	slots := make(map[string]actmatch.TimeSlot)
	for _, name := range names {
		slot, ok, err := ParseSlotColumn(name, year)
		if err != nil {
			return nil, err
		}
		if ok {
			slots[name] = slot
		}
	}
	return slots, nil
}
