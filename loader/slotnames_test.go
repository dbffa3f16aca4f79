// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"testing"
	"time"
)

func TestParseSlotColumn(t *testing.T) {
	t.Run("Morning", func(t *testing.T) {
		slot, ok, err := ParseSlotColumn("monday 02/06 morning", 2025)
		if err != nil || !ok {
			t.Fatalf("Expected a slot, got ok=%v err=%v", ok, err)
		}
		want := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
		if !slot.Start().Equal(want) {
			t.Errorf("Expected start %v, got %v", want, slot.Start())
		}
		if slot.End().Hour() != 13 {
			t.Errorf("Expected a 13:00 end, got %v", slot.End())
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		_, ok, err := ParseSlotColumn("  Monday 02/06 Evening ", 2025)
		if err != nil || !ok {
			t.Errorf("Expected a slot, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("NightBelongsToPreviousDay", func(t *testing.T) {
		slot, ok, err := ParseSlotColumn("tuesday 03/06 night", 2025)
		if err != nil || !ok {
			t.Fatalf("Expected a slot, got ok=%v err=%v", ok, err)
		}
		want := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
		if !slot.Day().Equal(want) {
			t.Errorf("Expected day June 2, got %v", slot.Day())
		}
	})

	t.Run("WrongWeekday", func(t *testing.T) {
		_, ok, err := ParseSlotColumn("monday 03/06 morning", 2025)
		if !ok || err == nil {
			t.Errorf("Expected a weekday mismatch error, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("NotASlotColumn", func(t *testing.T) {
		for _, name := range []string{"max_games", "wish 1", "dont play with", "monday morning"} {
			if _, ok, err := ParseSlotColumn(name, 2025); ok || err != nil {
				t.Errorf("Expected %q to be skipped, got ok=%v err=%v", name, ok, err)
			}
		}
	})
}

func TestParseSlotColumns(t *testing.T) {
	names := []string{
		"name",
		"monday 02/06 afternoon",
		"tuesday 03/06 evening",
		"wish 1",
	}
	slots, err := ParseSlotColumns(names, 2025)
	if err != nil {
		t.Fatalf("ParseSlotColumns: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slot columns, got %d", len(slots))
	}
	if _, ok := slots["monday 02/06 afternoon"]; !ok {
		t.Errorf("Expected the afternoon column to be kept")
	}
}
