// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"
)

func value(t *testing.T, m Model, v Var) int {
	t.Helper()
	x := m.Value(v)
	if x < -0.5 {
		t.Fatalf("Expected a non-negative value, got %v", x)
	}
	return int(x + 0.5)
}

func TestBranchBound_Basic(t *testing.T) {
	t.Run("SingleBinary", func(t *testing.T) {
		m := BranchBound()
		x := m.Binary()
		m.Maximize([]Term{{1, x}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		if v := value(t, m, x); v != 1 {
			t.Errorf("Expected x=1, got %d", v)
		}
	})

	t.Run("NegativeCoefficient", func(t *testing.T) {
		m := BranchBound()
		x := m.Binary()
		m.Maximize([]Term{{-1, x}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		if v := value(t, m, x); v != 0 {
			t.Errorf("Expected x=0, got %d", v)
		}
	})

	t.Run("Knapsack", func(t *testing.T) {
		m := BranchBound()
		x0, x1, x2 := m.Binary(), m.Binary(), m.Binary()
		m.Constrain([]Term{{2, x0}, {3, x1}, {4, x2}}, LE, 5)
		m.Maximize([]Term{{3, x0}, {4, x1}, {5, x2}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		// items 0 and 1 fit together and beat item 2 alone
		if v := value(t, m, x0); v != 1 {
			t.Errorf("Expected x0=1, got %d", v)
		}
		if v := value(t, m, x1); v != 1 {
			t.Errorf("Expected x1=1, got %d", v)
		}
		if v := value(t, m, x2); v != 0 {
			t.Errorf("Expected x2=0, got %d", v)
		}
	})
}

func TestBranchBound_Relations(t *testing.T) {
	t.Run("Equality", func(t *testing.T) {
		m := BranchBound()
		x0, x1, x2 := m.Binary(), m.Binary(), m.Binary()
		m.Constrain([]Term{{1, x0}, {1, x1}, {1, x2}}, EQ, 2)
		m.Maximize([]Term{{1, x0}, {2, x1}, {3, x2}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		if v := value(t, m, x0); v != 0 {
			t.Errorf("Expected x0=0, got %d", v)
		}
		if v := value(t, m, x1); v != 1 {
			t.Errorf("Expected x1=1, got %d", v)
		}
		if v := value(t, m, x2); v != 1 {
			t.Errorf("Expected x2=1, got %d", v)
		}
	})

	t.Run("GreaterEqual", func(t *testing.T) {
		m := BranchBound()
		x0, x1 := m.Binary(), m.Binary()
		m.Constrain([]Term{{1, x0}, {1, x1}}, GE, 1)
		m.Maximize([]Term{{-1, x0}, {-2, x1}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		// the cheapest way to satisfy the cover is x0 alone
		if v := value(t, m, x0); v != 1 {
			t.Errorf("Expected x0=1, got %d", v)
		}
		if v := value(t, m, x1); v != 0 {
			t.Errorf("Expected x1=0, got %d", v)
		}
	})

	t.Run("IntegerVariable", func(t *testing.T) {
		m := BranchBound()
		x := m.Integer(0, 5)
		m.Constrain([]Term{{2, x}}, LE, 7)
		m.Maximize([]Term{{1, x}})

		if st := m.Optimize(); st != Optimal {
			t.Fatalf("Expected optimal, got %v", st)
		}
		if v := value(t, m, x); v != 3 {
			t.Errorf("Expected x=3, got %d", v)
		}
	})
}

func TestBranchBound_Infeasible(t *testing.T) {
	t.Run("CoverTooLarge", func(t *testing.T) {
		m := BranchBound()
		x0, x1 := m.Binary(), m.Binary()
		m.Constrain([]Term{{1, x0}, {1, x1}}, GE, 3)
		m.Maximize([]Term{{1, x0}, {1, x1}})

		if st := m.Optimize(); st != Infeasible {
			t.Errorf("Expected infeasible, got %v", st)
		}
	})

	t.Run("ContradictingConstraints", func(t *testing.T) {
		m := BranchBound()
		x := m.Integer(0, 10)
		m.Constrain([]Term{{1, x}}, GE, 4)
		m.Constrain([]Term{{1, x}}, LE, 3)
		m.Maximize([]Term{{1, x}})

		if st := m.Optimize(); st != Infeasible {
			t.Errorf("Expected infeasible, got %v", st)
		}
	})
}

func TestBranchBound_Resolve(t *testing.T) {
	m := BranchBound()
	x0, x1 := m.Binary(), m.Binary()
	m.Constrain([]Term{{1, x0}, {1, x1}}, LE, 1)
	m.Maximize([]Term{{2, x0}, {1, x1}})

	if st := m.Optimize(); st != Optimal {
		t.Fatalf("Expected optimal, got %v", st)
	}
	if v := value(t, m, x0); v != 1 {
		t.Fatalf("Expected x0=1 before the mutation, got %d", v)
	}

	// pinning the weaker variable flips the solution
	m.SetLower(x1, 1)
	if st := m.Optimize(); st != Optimal {
		t.Fatalf("Expected optimal after the mutation, got %v", st)
	}
	if v := value(t, m, x0); v != 0 {
		t.Errorf("Expected x0=0 after the mutation, got %d", v)
	}
	if v := value(t, m, x1); v != 1 {
		t.Errorf("Expected x1=1 after the mutation, got %d", v)
	}

	m.SetUpper(x1, 0)
	m.SetLower(x1, 0)
	if st := m.Optimize(); st != Optimal {
		t.Fatalf("Expected optimal after relaxing, got %v", st)
	}
	if v := value(t, m, x0); v != 1 {
		t.Errorf("Expected x0=1 after relaxing, got %d", v)
	}
}

func TestBranchBoundN_Abort(t *testing.T) {
	m := BranchBoundN(1)
	var terms, objTerms []Term
	for i := 0; i < 12; i++ {
		x := m.Binary()
		terms = append(terms, Term{1, x})
		objTerms = append(objTerms, Term{float64(i + 1), x})
	}
	m.Constrain(terms, LE, 6)
	m.Maximize(objTerms)

	if st := m.Optimize(); st != Aborted {
		t.Errorf("Expected aborted, got %v", st)
	}
}

func TestBranchBound_ObjectiveReplaced(t *testing.T) {
	m := BranchBound()
	x0, x1 := m.Binary(), m.Binary()
	m.Constrain([]Term{{1, x0}, {1, x1}}, LE, 1)
	m.Maximize([]Term{{1, x0}})
	m.Maximize([]Term{{1, x1}})

	if st := m.Optimize(); st != Optimal {
		t.Fatalf("Expected optimal, got %v", st)
	}
	if v := value(t, m, x1); v != 1 {
		t.Errorf("Expected x1=1 under the replaced objective, got %d", v)
	}
	if v := value(t, m, x0); v != 0 {
		t.Errorf("Expected x0=0 under the replaced objective, got %d", v)
	}
}
