// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"bytes"
	"strings"
	"testing"
)

func TestResult_Bookkeeping(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 1, 2, 14, 4)
	goGame := addActivity(t, r, "go", 2, 3, 14, 4)
	alice := addPlayer(t, r, "alice", 2, 2, 0, chess, goGame)
	r.FilterWishes(false)

	res := newResult(r)
	if got := res.Refused(alice); len(got) != 2 {
		t.Fatalf("Expected both wishes pending, got %v", got)
	}
	if got := res.Remaining(chess); got != 1 {
		t.Fatalf("Expected 1 seat, got %d", got)
	}

	res.add(alice, chess)

	if got := res.Cast(chess); len(got) != 1 || got[0] != alice {
		t.Errorf("Expected alice in the cast, got %v", got)
	}
	if got := res.Schedule(alice); len(got) != 1 || got[0] != chess {
		t.Errorf("Expected chess in the schedule, got %v", got)
	}
	if got := res.Remaining(chess); got != 0 {
		t.Errorf("Expected 0 seats, got %d", got)
	}
	if got := res.Refused(alice); len(got) != 1 || got[0] != "go" {
		t.Errorf("Expected only go to stay pending, got %v", got)
	}
}

func TestResult_OverCapacityPanics(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 1, 2, 14, 4)
	alice := addPlayer(t, r, "alice", 1, 1, 0, chess)
	bob := addPlayer(t, r, "bob", 1, 1, 0, chess)
	r.FilterWishes(false)

	res := newResult(r)
	res.add(alice, chess)

	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic past the capacity")
		}
	}()
	res.add(bob, chess)
}

func TestResult_RefusedVsUnavailable(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 1, 2, 14, 4)
	goGame := addActivity(t, r, "go", 4, 3, 14, 4)
	alice := addPlayer(t, r, "alice", 2, 2, 0, chess, goGame)
	bob := addPlayer(t, r, "bob", 1, 1, 0, chess)
	// alice cannot attend go at all
	alice.Availability = map[TimeSlot]bool{
		mustSlot(t, at(3, 13, 0), at(3, 18, 0)): false,
	}
	// and loses the chess seat to bob
	res := func() *Result {
		r.FilterWishes(false)
		m := &Matcher{}
		if err := m.Build(r); err != nil {
			t.Fatalf("Build: %v", err)
		}
		if err := m.ForceAssign("bob", "chess"); err != nil {
			t.Fatalf("ForceAssign: %v", err)
		}
		res, err := m.Solve()
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		return res
	}()

	if got := res.Refused(alice); len(got) != 1 || got[0] != "chess" {
		t.Errorf("Expected chess refused, got %v", got)
	}
	if got := res.Unavailable(alice); len(got) != 1 || got[0] != "go" {
		t.Errorf("Expected go unavailable, got %v", got)
	}
	if got := res.Refused(bob); len(got) != 0 {
		t.Errorf("Expected nothing refused for bob, got %v", got)
	}
}

func TestResult_Summarize(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 1, 2, 14, 4)
	goGame := addActivity(t, r, "go", 4, 3, 14, 4)
	alice := addPlayer(t, r, "alice", 2, 2, 0, chess, goGame)
	bob := addPlayer(t, r, "bob", 1, 1, 0, chess)
	r.FilterWishes(false)

	res := newResult(r)
	res.add(alice, goGame)
	res.add(bob, chess)

	summ := res.Summarize()
	if summ.Players != 2 || summ.Activities != 2 {
		t.Errorf("Expected 2 players and 2 activities, got %+v", summ)
	}
	if summ.BelowIdeal != 1 || summ.AtIdeal != 1 || summ.AboveIdeal != 0 {
		t.Errorf("Expected 1 below and 1 at ideal, got %+v", summ)
	}
	if len(summ.MissedBest) != 1 || summ.MissedBest[0] != "alice" {
		t.Errorf("Expected alice to have missed her first choice, got %v", summ.MissedBest)
	}
	if summ.TopThree != 2 {
		t.Errorf("Expected 2 satisfied top wishes, got %d", summ.TopThree)
	}
}

func TestResult_Diff(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 2, 2, 14, 4)
	alice := addPlayer(t, r, "alice", 1, 1, 0, chess)
	bob := addPlayer(t, r, "bob", 1, 1, 0, chess)
	r.FilterWishes(false)

	one := newResult(r)
	one.add(alice, chess)
	two := newResult(r)
	two.add(bob, chess)

	var buf bytes.Buffer
	one.Diff(two, &buf)
	out := buf.String()
	if !strings.Contains(out, "+ alice") || !strings.Contains(out, "- bob") {
		t.Errorf("Expected the cast difference, got %q", out)
	}

	buf.Reset()
	one.Diff(one, &buf)
	if buf.Len() != 0 {
		t.Errorf("Expected no difference against itself, got %q", buf.String())
	}
}

func TestResult_Reports(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 1, 2, 14, 4)
	goGame := addActivity(t, r, "go", 4, 3, 14, 4)
	orga := addPlayer(t, r, "carol", 1, 1, 0)
	r.SetOrganizer(goGame, orga)
	alice := addPlayer(t, r, "alice", 2, 2, 0, chess, goGame)
	r.FilterWishes(false)

	res := newResult(r)
	res.add(alice, chess)
	res.add(alice, goGame)

	var buf bytes.Buffer
	res.WriteActivitiesReport(&buf)
	out := buf.String()
	if !strings.Contains(out, "chess") || !strings.Contains(out, "missing 3 more") {
		t.Errorf("Expected the casts and the missing count, got %q", out)
	}

	buf.Reset()
	res.WritePlayersReport(&buf)
	out = buf.String()
	if !strings.Contains(out, "alice | got 2 activities") {
		t.Errorf("Expected alice's schedule line, got %q", out)
	}
	if !strings.Contains(out, "also organizing:") {
		t.Errorf("Expected carol's organizing list, got %q", out)
	}
}

func TestResult_ExportCSV(t *testing.T) {
	r := NewRoster()
	chess := addActivity(t, r, "chess", 2, 2, 14, 4)
	goGame := addActivity(t, r, "go", 4, 3, 14, 4)
	alice := addPlayer(t, r, "alice", 2, 2, 0, chess, goGame)
	r.FilterWishes(false)

	res := newResult(r)
	res.add(alice, chess)

	var buf bytes.Buffer
	if err := res.ExportActivitiesCSV(&buf); err != nil {
		t.Fatalf("ExportActivitiesCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "activity,chess,go") {
		t.Errorf("Expected the activity row, got %q", out)
	}
	if !strings.Contains(out, "... 1 seats left") {
		t.Errorf("Expected the seats-left marker, got %q", out)
	}

	buf.Reset()
	if err := res.ExportPlayersCSV(&buf); err != nil {
		t.Fatalf("ExportPlayersCSV: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, "player,alice") {
		t.Errorf("Expected the player row, got %q", out)
	}
	if !strings.Contains(out, "chess (#1)") {
		t.Errorf("Expected the rank decoration, got %q", out)
	}
	if !strings.Contains(out, "refused,go (#2)") {
		t.Errorf("Expected the refused column, got %q", out)
	}
}
