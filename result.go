// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"fmt"
	"io"
	"sort"
)

// Result is the outcome of one solve: the cast of each activity and the
// schedule of each player, with capacity accounting and the bookkeeping
// of wishes that were not satisfied. Refused wishes were seen by the
// optimizer and lost; unavailable wishes were removed by filtering and
// never attempted.
type Result struct {
	roster *Roster

	casts     map[int][]*Player   // by activity id
	schedules map[int][]*Activity // by player id
	remaining map[int]int         // seats left, by activity id
	refused   map[int][]string    // by player id
	unavail   map[int][]string    // by player id
}

func newResult(r *Roster) *Result {
	res := &Result{
		roster:    r,
		casts:     make(map[int][]*Player, len(r.activities)),
		schedules: make(map[int][]*Activity, len(r.players)),
		remaining: make(map[int]int, len(r.activities)),
		refused:   make(map[int][]string, len(r.players)),
		unavail:   make(map[int][]string, len(r.players)),
	}
	for _, a := range r.activities {
		res.remaining[a.ID] = a.Capacity
	}
	for _, p := range r.players {
		res.refused[p.ID] = append([]string(nil), p.rankedNames...)
		res.unavail[p.ID] = append([]string(nil), p.removedNames...)
	}
	return res
}

func (res *Result) add(p *Player, a *Activity) {
	res.schedules[p.ID] = append(res.schedules[p.ID], a)
	res.casts[a.ID] = append(res.casts[a.ID], p)
	res.remaining[a.ID]--
	if res.remaining[a.ID] < 0 {
		panic(fmt.Sprintf("activity %s cast beyond its capacity %d: capacity constraint not enforced",
			a.Name, a.Capacity))
	}
	refused := res.refused[p.ID]
	for i, name := range refused {
		if name == a.Name {
			res.refused[p.ID] = append(refused[:i], refused[i+1:]...)
			break
		}
	}
}

// Cast is the list of players assigned to a.
func (res *Result) Cast(a *Activity) []*Player {
	return res.casts[a.ID]
}

// Schedule is the list of activities assigned to p, by start time.
func (res *Result) Schedule(p *Player) []*Activity {
	acts := append([]*Activity(nil), res.schedules[p.ID]...)
	sort.Slice(acts, func(i, j int) bool {
		return acts[i].Slot.start.Before(acts[j].Slot.start)
	})
	return acts
}

// Remaining is the number of free seats left on a.
func (res *Result) Remaining(a *Activity) int {
	return res.remaining[a.ID]
}

// Refused is the list of wish names p asked for, survived filtering, and
// still did not get.
func (res *Result) Refused(p *Player) []string {
	return res.refused[p.ID]
}

// Unavailable is the list of wish names removed from p's request before
// optimization.
func (res *Result) Unavailable(p *Player) []string {
	return res.unavail[p.ID]
}

// Summary aggregates the quality of one result.
type Summary struct {
	Players    int `json:"players"`
	Activities int `json:"activities"`

	BelowIdeal int `json:"below_ideal"`
	AtIdeal    int `json:"at_ideal"`
	AboveIdeal int `json:"above_ideal"`

	// MissedBest names the players who did not get their first choice.
	MissedBest []string `json:"missed_best"`
	// TopThree counts satisfied wishes among every player's first three.
	TopThree int `json:"top_three"`
}

func (res *Result) Summarize() Summary {
	summ := Summary{
		Players:    len(res.roster.players),
		Activities: len(res.roster.activities),
	}
	for _, p := range res.roster.players {
		acts := res.schedules[p.ID]
		switch {
		case len(acts) < p.IdealActivities:
			summ.BelowIdeal++
		case len(acts) == p.IdealActivities:
			summ.AtIdeal++
		default:
			summ.AboveIdeal++
		}

		got := make(map[string]bool, len(acts))
		for _, a := range acts {
			got[a.Name] = true
		}
		if len(p.initialNames) > 0 && !got[p.initialNames[0]] {
			summ.MissedBest = append(summ.MissedBest, p.Name)
		}
		top := p.initialNames
		if len(top) > 3 {
			top = top[:3]
		}
		for _, name := range top {
			if got[name] {
				summ.TopThree++
			}
		}
	}
	return summ
}

// WriteActivitiesReport writes the cast of every activity, full casts
// first.
func (res *Result) WriteActivitiesReport(w io.Writer) {
	fmt.Fprintln(w, "Activities with a full cast:")
	res.writeCasts(w, true)
	fmt.Fprintln(w, "Activities WITHOUT a full cast:")
	res.writeCasts(w, false)
}

func (res *Result) writeCasts(w io.Writer, full bool) {
	for _, a := range res.roster.activities {
		if (res.remaining[a.ID] == 0) != full {
			continue
		}
		fmt.Fprintf(w, "* %v\n", a)
		for _, p := range res.casts[a.ID] {
			fmt.Fprintf(w, "  - %s\n", p.Name)
		}
		if rest := res.remaining[a.ID]; rest > 0 {
			fmt.Fprintf(w, "  missing %d more\n", rest)
		}
		fmt.Fprintln(w)
	}
}

// WritePlayersReport writes every player's schedule and organizing list.
func (res *Result) WritePlayersReport(w io.Writer) {
	fmt.Fprintln(w, "Activities given to each player:")
	for _, p := range res.roster.players {
		acts := res.Schedule(p)
		fmt.Fprintf(w, "* %s | got %d activities, ideal %s, max %s\n",
			p.Name, len(acts), countOrDash(p.IdealActivities), countOrDash(p.MaxActivities))
		for _, a := range acts {
			fmt.Fprintf(w, "  - %s | %s\n", a.Name, a.Slot)
		}
		if len(p.Organizing) > 0 {
			fmt.Fprintln(w, "  also organizing:")
			for _, a := range p.Organizing {
				fmt.Fprintf(w, "  - %s | %s\n", a.Name, a.Slot)
			}
		}
	}
}

func countOrDash(n int) string {
	if n == Unlimited {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}

// Diff writes the cast differences against another result of the same
// roster.
func (res *Result) Diff(other *Result, w io.Writer) {
	for _, a := range res.roster.activities {
		mine := playerSet(res.casts[a.ID])
		theirs := playerSet(other.casts[a.ID])
		var plus, minus []*Player
		for _, p := range res.casts[a.ID] {
			if !theirs[p.ID] {
				plus = append(plus, p)
			}
		}
		for _, p := range other.casts[a.ID] {
			if !mine[p.ID] {
				minus = append(minus, p)
			}
		}
		if len(plus) == 0 && len(minus) == 0 {
			continue
		}
		fmt.Fprintf(w, "%v\n", a)
		for _, p := range plus {
			fmt.Fprintf(w, "+ %s\n", p.Name)
		}
		for _, p := range minus {
			fmt.Fprintf(w, "- %s\n", p.Name)
		}
		fmt.Fprintln(w)
	}
}

func playerSet(ps []*Player) map[int]bool {
	set := make(map[int]bool, len(ps))
	for _, p := range ps {
		set[p.ID] = true
	}
	return set
}
