// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver defines the integer linear optimization contract consumed
// by the matching engine, together with an exact in-repo implementation.
package solver

// Var identifies one variable inside one Model.
type Var int

// Rel is the relation of a linear constraint.
type Rel int

const (
	LE Rel = iota // less than or equal
	GE            // greater than or equal
	EQ            // equal
)

// Term is one coefficient-variable product of a linear expression.
type Term struct {
	Coef float64
	Var  Var
}

// Status is the outcome of Model.Optimize.
type Status int

const (
	Unknown Status = iota
	Optimal
	Infeasible
	Aborted // search budget exhausted before proving optimality
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Model is a mutable integer linear program with maximize semantics.
// Variables and constraints are declared first, then Optimize is called;
// after an Optimal status, Value reports each variable's solved value.
// Variable bounds may be mutated between solves, which is how forced
// assignments and the freeze-and-relax protocol are expressed.
type Model interface {
	// Binary declares a 0/1 variable.
	Binary() Var
	// Integer declares a bounded integer variable.
	Integer(lb, ub int) Var
	// Constrain adds the linear constraint sum(terms) rel rhs.
	Constrain(terms []Term, rel Rel, rhs float64)
	// Maximize sets the objective, replacing any previous one.
	Maximize(terms []Term)

	SetLower(v Var, lb int)
	SetUpper(v Var, ub int)

	Optimize() Status
	// Value is only meaningful after Optimize returned Optimal.
	Value(v Var) float64
}
