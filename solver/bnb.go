// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"
)

const feasTol = 1e-6

// BranchBound returns an exact Model implementation: depth-first
// branch-and-bound over the integer variables, with bounds propagation at
// every node and an admissible objective bound for pruning.
func BranchBound() Model {
	return &bnbModel{maxNodes: math.MaxInt64}
}

// BranchBoundN is BranchBound with a node budget; Optimize returns
// Aborted when the budget is exhausted before the search completes.
func BranchBoundN(maxNodes int64) Model {
	return &bnbModel{maxNodes: maxNodes}
}

type bnbConstraint struct {
	terms []Term
	rel   Rel
	rhs   float64
}

type bnbModel struct {
	lo, hi []float64
	cons   []bnbConstraint
	obj    []float64 // objective coefficient per variable
	vals   []float64 // assignment of the last Optimal solve

	maxNodes int64
}

func (m *bnbModel) Binary() Var { return m.Integer(0, 1) }

func (m *bnbModel) Integer(lb, ub int) Var {
	m.lo = append(m.lo, float64(lb))
	m.hi = append(m.hi, float64(ub))
	m.obj = append(m.obj, 0)
	return Var(len(m.lo) - 1)
}

func (m *bnbModel) Constrain(terms []Term, rel Rel, rhs float64) {
	m.cons = append(m.cons, bnbConstraint{
		terms: append([]Term(nil), terms...),
		rel:   rel,
		rhs:   rhs,
	})
}

func (m *bnbModel) Maximize(terms []Term) {
	for i := range m.obj {
		m.obj[i] = 0
	}
	for _, t := range terms {
		m.obj[t.Var] += t.Coef
	}
}

func (m *bnbModel) SetLower(v Var, lb int) { m.lo[v] = float64(lb) }
func (m *bnbModel) SetUpper(v Var, ub int) { m.hi[v] = float64(ub) }

func (m *bnbModel) Value(v Var) float64 { return m.vals[v] }

func (m *bnbModel) Optimize() Status {
	s := &bnbSearch{m: m}

	lo := append([]float64(nil), m.lo...)
	hi := append([]float64(nil), m.hi...)
	if s.propagate(lo, hi) {
		s.dive(lo, hi)
	}

	if s.aborted {
		return Aborted
	}
	if !s.found {
		return Infeasible
	}
	m.vals = s.sol
	return Optimal
}

type bnbSearch struct {
	m       *bnbModel
	best    float64
	sol     []float64
	found   bool
	nodes   int64
	aborted bool
}

// propagate tightens the variable bounds to a fixpoint of bounds
// consistency over every constraint. Reports false on a proven conflict.
func (s *bnbSearch) propagate(lo, hi []float64) bool {
	for changed := true; changed; {
		changed = false
		for _, c := range s.m.cons {
			minSum, maxSum := 0.0, 0.0
			for _, t := range c.terms {
				if t.Coef >= 0 {
					minSum += t.Coef * lo[t.Var]
					maxSum += t.Coef * hi[t.Var]
				} else {
					minSum += t.Coef * hi[t.Var]
					maxSum += t.Coef * lo[t.Var]
				}
			}
			if c.rel != GE && minSum > c.rhs+feasTol {
				return false
			}
			if c.rel != LE && maxSum < c.rhs-feasTol {
				return false
			}
			for _, t := range c.terms {
				if t.Coef == 0 {
					continue
				}
				var tmin, tmax float64
				if t.Coef > 0 {
					tmin, tmax = t.Coef*lo[t.Var], t.Coef*hi[t.Var]
				} else {
					tmin, tmax = t.Coef*hi[t.Var], t.Coef*lo[t.Var]
				}
				if c.rel != GE {
					// t.Coef*x <= rhs - sum of the other minima
					limit := c.rhs - (minSum - tmin)
					if t.Coef > 0 {
						b := math.Floor(limit/t.Coef + feasTol)
						if b < lo[t.Var]-feasTol {
							return false
						}
						if b < hi[t.Var]-feasTol {
							hi[t.Var] = b
							changed = true
						}
					} else {
						b := math.Ceil(limit/t.Coef - feasTol)
						if b > hi[t.Var]+feasTol {
							return false
						}
						if b > lo[t.Var]+feasTol {
							lo[t.Var] = b
							changed = true
						}
					}
				}
				if c.rel != LE {
					// t.Coef*x >= rhs - sum of the other maxima
					limit := c.rhs - (maxSum - tmax)
					if t.Coef > 0 {
						b := math.Ceil(limit/t.Coef - feasTol)
						if b > hi[t.Var]+feasTol {
							return false
						}
						if b > lo[t.Var]+feasTol {
							lo[t.Var] = b
							changed = true
						}
					} else {
						b := math.Floor(limit/t.Coef + feasTol)
						if b < lo[t.Var]-feasTol {
							return false
						}
						if b < hi[t.Var]-feasTol {
							hi[t.Var] = b
							changed = true
						}
					}
				}
			}
		}
	}
	return true
}

func (s *bnbSearch) dive(lo, hi []float64) {
	if s.aborted {
		return
	}
	s.nodes++
	if s.nodes > s.m.maxNodes {
		s.aborted = true
		return
	}

	// admissible upper bound on the objective under the current bounds
	bound := 0.0
	for i, c := range s.m.obj {
		if c >= 0 {
			bound += c * hi[i]
		} else {
			bound += c * lo[i]
		}
	}
	if s.found && bound <= s.best+1e-9 {
		return
	}

	// branch on the unfixed variable that weighs most in the objective
	v := -1
	weight := -1.0
	for i := range lo {
		if hi[i]-lo[i] > 0.5 {
			if w := math.Abs(s.m.obj[i]); w > weight {
				weight = w
				v = i
			}
		}
	}

	if v < 0 {
		if !s.feasible(lo) {
			return
		}
		obj := 0.0
		for i, c := range s.m.obj {
			obj += c * lo[i]
		}
		if !s.found || obj > s.best {
			s.best = obj
			s.found = true
			s.sol = append([]float64(nil), lo...)
		}
		return
	}

	lov, hiv := int(math.Round(lo[v])), int(math.Round(hi[v]))
	step := 1
	first, last := hiv, lov
	if s.m.obj[v] < 0 {
		first, last = lov, hiv
	}
	if first > last {
		step = -1
	}
	for x := first; ; x += step {
		clo := append([]float64(nil), lo...)
		chi := append([]float64(nil), hi...)
		clo[v], chi[v] = float64(x), float64(x)
		if s.propagate(clo, chi) {
			s.dive(clo, chi)
		}
		if s.aborted || x == last {
			return
		}
	}
}

func (s *bnbSearch) feasible(x []float64) bool {
	for _, c := range s.m.cons {
		sum := 0.0
		for _, t := range c.terms {
			sum += t.Coef * x[t.Var]
		}
		if c.rel != GE && sum > c.rhs+feasTol {
			return false
		}
		if c.rel != LE && sum < c.rhs-feasTol {
			return false
		}
	}
	return true
}
