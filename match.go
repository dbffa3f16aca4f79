// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/someonegg/actmatch/solver"
)

// A solved variable at or above assignTol counts as assigned; backends
// may report values with floating-point noise.
const assignTol = 0.9

// Matcher formulates one roster as an integer linear program and runs the
// two-phase solve: first every player's load is bounded by their ideal
// activity count, then the found assignment is frozen and the bounds are
// relaxed to the maximum counts for a second solve. Build must be called
// once before the auxiliary operations and Solve.
type Matcher struct {
	// Coef weights wish ranks in the objective. Nil means Hyperbolic.
	Coef CoefFunc
	// Model is the optimization backend. Nil means solver.BranchBound().
	Model solver.Model

	Verbose bool

	roster *Roster

	// Decision variables, indexed by (player index, wish index).
	// plays means the player is assigned the wished session; idealPlays
	// additionally means the session counts toward the ideal load.
	plays      [][]solver.Var
	idealPlays [][]solver.Var

	load      []solver.Var // per player; ub is raised in phase two
	occupancy []solver.Var // per activity

	caps []int // phase-two load bound per player
	obj  []solver.Term

	built bool
}

// Build creates the decision variables and every structural, opt-in and
// blacklist constraint of the roster's matching problem.
func (m *Matcher) Build(r *Roster) error {
	if m.built {
		return errors.New("matcher already built")
	}
	if m.Coef == nil {
		m.Coef = Hyperbolic
	}
	if m.Model == nil {
		m.Model = solver.BranchBound()
	}
	m.roster = r
	m.built = true

	m.plays = make([][]solver.Var, len(r.players))
	m.idealPlays = make([][]solver.Var, len(r.players))
	m.load = make([]solver.Var, len(r.players))
	m.caps = make([]int, len(r.players))
	for i, p := range r.players {
		m.plays[i] = make([]solver.Var, len(p.Wishes))
		m.idealPlays[i] = make([]solver.Var, len(p.Wishes))
		for j := range p.Wishes {
			m.plays[i][j] = m.Model.Binary()
			m.idealPlays[i][j] = m.Model.Binary()
		}
		m.load[i] = m.Model.Integer(0, minInt(p.IdealActivities, len(p.Wishes)))
		m.caps[i] = minInt(p.MaxActivities, len(p.Wishes))
	}
	m.occupancy = make([]solver.Var, len(r.activities))
	for k, a := range r.activities {
		m.occupancy[k] = m.Model.Integer(0, a.Capacity)
	}

	m.constrain()
	m.objective()

	if m.Verbose {
		fmt.Printf("model: %d players, %d activities\n", len(r.players), len(r.activities))
	}
	return nil
}

func (m *Matcher) constrain() {
	r := m.roster

	// an ideal play is a play
	for i := range m.plays {
		for j := range m.plays[i] {
			m.Model.Constrain([]solver.Term{
				{Coef: 1, Var: m.idealPlays[i][j]},
				{Coef: -1, Var: m.plays[i][j]},
			}, solver.LE, 0)
		}
	}

	// per-player load, and the static bound on ideal plays
	for i, p := range r.players {
		terms := make([]solver.Term, 0, len(p.Wishes)+1)
		ideal := make([]solver.Term, 0, len(p.Wishes))
		for j := range p.Wishes {
			terms = append(terms, solver.Term{Coef: 1, Var: m.plays[i][j]})
			ideal = append(ideal, solver.Term{Coef: 1, Var: m.idealPlays[i][j]})
		}
		terms = append(terms, solver.Term{Coef: -1, Var: m.load[i]})
		m.Model.Constrain(terms, solver.EQ, 0)
		if len(ideal) > 0 {
			m.Model.Constrain(ideal, solver.LE, float64(minInt(p.IdealActivities, len(p.Wishes))))
		}
	}

	// per-activity occupancy, bounded by capacity through the
	// occupancy variable's upper bound
	wishers := make([][]solver.Term, len(r.activities))
	for i, p := range r.players {
		for j, w := range p.Wishes {
			wishers[w.ID] = append(wishers[w.ID], solver.Term{Coef: 1, Var: m.plays[i][j]})
		}
	}
	for k := range r.activities {
		terms := append(wishers[k], solver.Term{Coef: -1, Var: m.occupancy[k]})
		m.Model.Constrain(terms, solver.EQ, 0)
	}

	for i, p := range r.players {
		m.constrainDuplicates(i, p)
		m.constrainTemporal(i, p)
	}

	m.constrainBlacklist()
}

// constrainDuplicates keeps a player out of two sessions of one game.
func (m *Matcher) constrainDuplicates(i int, p *Player) {
	byName := make(map[string][]int)
	for j, w := range p.Wishes {
		byName[w.Name] = append(byName[w.Name], j)
	}
	for _, js := range byName {
		if len(js) < 2 {
			continue
		}
		terms := make([]solver.Term, len(js))
		for n, j := range js {
			terms[n] = solver.Term{Coef: 1, Var: m.plays[i][j]}
		}
		m.Model.Constrain(terms, solver.LE, 1)
	}
}

func (m *Matcher) constrainTemporal(i int, p *Player) {
	byDay := make(map[time.Time][]int)
	for j, w := range p.Wishes {
		d := w.Day()
		byDay[d] = append(byDay[d], j)
	}

	atMost := func(js []int, n int) {
		terms := make([]solver.Term, len(js))
		for k, j := range js {
			terms[k] = solver.Term{Coef: 1, Var: m.plays[i][j]}
		}
		m.Model.Constrain(terms, solver.LE, float64(n))
	}

	if p.Constraints.Has(SameDay) {
		// subsumes the overlap rule for this player
		for _, js := range byDay {
			if len(js) >= 2 {
				atMost(js, 1)
			}
		}
	} else {
		// two overlapping wishes can only overlap on the same day
		for _, js := range byDay {
			for x := 0; x < len(js); x++ {
				for y := x + 1; y < len(js); y++ {
					if p.Wishes[js[x]].Slot.Overlaps(p.Wishes[js[y]].Slot) {
						atMost([]int{js[x], js[y]}, 1)
					}
				}
			}
		}
	}

	next := func(d time.Time, n int) []int { return byDay[d.AddDate(0, 0, n)] }

	if p.Constraints.Has(TwoConsecutiveDays) {
		for d, js := range byDay {
			for _, a := range js {
				for _, b := range next(d, 1) {
					atMost([]int{a, b}, 1)
				}
			}
		}
	}

	if p.Constraints.Has(ThreeConsecutiveDays) {
		for d, js := range byDay {
			for _, a := range js {
				for _, b := range next(d, 1) {
					for _, c := range next(d, 2) {
						atMost([]int{a, b, c}, 2)
					}
				}
			}
		}
	}

	if p.Constraints.Has(MoreConsecutiveDays) {
		for d, js := range byDay {
			for _, a := range js {
				for _, b := range next(d, 1) {
					for _, c := range next(d, 2) {
						for _, e := range next(d, 3) {
							atMost([]int{a, b, c, e}, 3)
						}
					}
				}
			}
		}
	}

	if p.Constraints.Has(NightThenMorning) {
		for d, js := range byDay {
			for _, a := range js {
				for _, b := range next(d, 1) {
					if p.Wishes[a].Slot.NightThenMorning(p.Wishes[b].Slot) {
						atMost([]int{a, b}, 1)
					}
				}
			}
		}
	}
}

func (m *Matcher) constrainBlacklist() {
	r := m.roster
	for pair := range r.blacklist.pairs {
		p, q := r.players[pair[0]], r.players[pair[1]]
		for j, w := range p.Wishes {
			for j2, w2 := range q.Wishes {
				if w == w2 {
					m.Model.Constrain([]solver.Term{
						{Coef: 1, Var: m.plays[p.ID][j]},
						{Coef: 1, Var: m.plays[q.ID][j2]},
					}, solver.LE, 1)
				}
			}
		}
	}
}

func (m *Matcher) objective() {
	m.obj = nil
	for i, p := range m.roster.players {
		// a name listed again later in the request keeps its best rank
		rank := make(map[string]int, len(p.rankedNames))
		for n, name := range p.rankedNames {
			if _, ok := rank[name]; !ok {
				rank[name] = n
			}
		}
		for j, w := range p.Wishes {
			c := m.Coef(rank[w.Name])
			m.obj = append(m.obj,
				solver.Term{Coef: c, Var: m.idealPlays[i][j]},
				solver.Term{Coef: Epsilon * c, Var: m.plays[i][j]})
		}
	}
	m.Model.Maximize(m.obj)
}

// ForceAssign guarantees the player one session of the named activity.
// Must be called after Build and before Solve. Fails with ErrNotFound
// when no surviving wish of the player matches the name; use
// ForceAssignID to target one session among several.
func (m *Matcher) ForceAssign(playerName, activityName string) error {
	p, err := m.roster.PlayerByName(playerName)
	if err != nil {
		return err
	}
	var terms []solver.Term
	for j, w := range p.Wishes {
		if strings.EqualFold(w.Name, activityName) {
			terms = append(terms, solver.Term{Coef: 1, Var: m.plays[p.ID][j]})
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("no activity named %q that %s can play: %w",
			activityName, playerName, ErrNotFound)
	}
	m.Model.Constrain(terms, solver.GE, 1)
	return nil
}

// ForceAssignID pins the player to one exact activity session.
func (m *Matcher) ForceAssignID(playerName string, activityID int) error {
	p, err := m.roster.PlayerByName(playerName)
	if err != nil {
		return err
	}
	for j, w := range p.Wishes {
		if w.ID == activityID {
			m.Model.SetLower(m.plays[p.ID][j], 1)
			return nil
		}
	}
	return fmt.Errorf("activity id %d is not wished by %s: %w",
		activityID, playerName, ErrNotFound)
}

// SetMinOccupancy puts a lower bound on the number of players assigned to
// the named activity. A negative min means the activity's full capacity.
// Fails with ErrAmbiguous when several sessions share the name.
func (m *Matcher) SetMinOccupancy(activityName string, min int) error {
	acts, err := m.roster.ActivitiesByName(activityName)
	if err != nil {
		return err
	}
	if len(acts) != 1 {
		return fmt.Errorf("activity %q has %d sessions: %w", activityName, len(acts), ErrAmbiguous)
	}
	a := acts[0]
	if min < 0 {
		min = a.Capacity
	}
	m.Model.SetLower(m.occupancy[a.ID], min)
	return nil
}

// RaiseLoad moves the player's phase-two load bound to n, which must stay
// within [ideal, max].
func (m *Matcher) RaiseLoad(playerName string, n int) error {
	p, err := m.roster.PlayerByName(playerName)
	if err != nil {
		return err
	}
	if n < p.IdealActivities || n > p.MaxActivities {
		return fmt.Errorf("player %s: load bound %d outside [%d, %d]",
			p.Name, n, p.IdealActivities, p.MaxActivities)
	}
	m.caps[p.ID] = minInt(n, len(p.Wishes))
	return nil
}

// Solve runs both phases and extracts the result. A non-optimal status on
// either phase is a hard failure with no partial result.
func (m *Matcher) Solve() (*Result, error) {
	if !m.built {
		return nil, errors.New("matcher not built")
	}

	if st := m.Model.Optimize(); st != solver.Optimal {
		return nil, fmt.Errorf("ideal-load phase ended %v: %w", st, ErrInfeasible)
	}
	if m.Verbose {
		fmt.Printf("ideal-load phase objective: %v\n", m.objValue())
	}

	// Freeze phase one: nothing assigned can be taken away.
	for i := range m.plays {
		for _, v := range m.plays[i] {
			if m.Model.Value(v) >= assignTol {
				m.Model.SetLower(v, 1)
			}
		}
	}
	for i := range m.load {
		m.Model.SetUpper(m.load[i], m.caps[i])
	}

	if st := m.Model.Optimize(); st != solver.Optimal {
		return nil, fmt.Errorf("max-load phase ended %v: %w", st, ErrInfeasible)
	}
	if m.Verbose {
		fmt.Printf("max-load phase objective: %v\n", m.objValue())
	}

	res := newResult(m.roster)
	for i, p := range m.roster.players {
		for j, v := range m.plays[i] {
			if m.Model.Value(v) >= assignTol {
				res.add(p, p.Wishes[j])
			}
		}
	}
	return res, nil
}

func (m *Matcher) objValue() float64 {
	sum := 0.0
	for _, t := range m.obj {
		sum += t.Coef * m.Model.Value(t.Var)
	}
	return sum
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
