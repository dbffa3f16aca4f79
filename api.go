// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package actmatch assigns players to scheduled group activities from
// ranked wish lists, respecting capacities, per-player load limits,
// temporal exclusivity rules and social blacklists, by formulating the
// assignment as an integer linear program and solving it in two phases.
package actmatch

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// Unlimited disables a player's maximum activity count.
	Unlimited = math.MaxInt

	// Epsilon scales the objective weight of activities beyond a
	// player's ideal count, so that no amount of extra activities can
	// outweigh one ideal-count choice.
	Epsilon = 1.0 / 64
)

var (
	ErrNotFound   = errors.New("not found")
	ErrAmbiguous  = errors.New("ambiguous name")
	ErrInfeasible = errors.New("model infeasible")
)

// CoefFunc maps a 0-indexed wish rank to its objective weight. It must be
// strictly decreasing and bounded.
type CoefFunc func(rank int) float64

// Hyperbolic is the default rank weighting, 1/(rank+1.01).
func Hyperbolic(rank int) float64 { return 1 / (float64(rank) + 1.01) }

// Geometric returns the rank weighting decay^rank, for decay in (0, 1].
func Geometric(decay float64) CoefFunc {
	return func(rank int) float64 { return math.Pow(decay, float64(rank)) }
}

// Activity is one session of a named game. The same name may be organized
// several times; each session is a distinct Activity with its own id.
type Activity struct {
	ID         int
	Name       string
	Capacity   int
	Slot       TimeSlot
	Organizers []*Player
}

func (a *Activity) Day() time.Time { return a.Slot.Day() }

func (a *Activity) String() string {
	return fmt.Sprintf("%d | %s | %s", a.ID, a.Name, a.Slot)
}

// Player is one participant. Wishes is the ranked wish list, narrowed by
// Roster.FilterWishes before matching; the matcher never mutates a Player.
type Player struct {
	ID              int
	Name            string
	Wishes          []*Activity
	Availability    map[TimeSlot]bool
	MaxActivities   int
	IdealActivities int
	Constraints     ConstraintSet
	Organizing      []*Activity

	initialNames []string // raw ranked wish names, as requested
	rankedNames  []string // distinct surviving names in rank order
	removedNames []string // names dropped entirely by filtering
}

func (p *Player) String() string {
	return fmt.Sprintf("%d | %s", p.ID, p.Name)
}

// InitialWishNames is the raw ranked request, before filtering.
func (p *Player) InitialWishNames() []string {
	return append([]string(nil), p.initialNames...)
}

// Constraint is a temporal rule kind a player can opt into.
type Constraint uint8

const (
	// SameDay forbids two activities on the same calendar day.
	SameDay Constraint = iota
	// NightThenMorning forbids an activity ending and another starting
	// within 12 hours on consecutive days.
	NightThenMorning
	// TwoConsecutiveDays forbids activities on two consecutive days.
	TwoConsecutiveDays
	// ThreeConsecutiveDays allows at most two activities over any three
	// consecutive days.
	ThreeConsecutiveDays
	// MoreConsecutiveDays allows at most three activities over any four
	// consecutive days.
	MoreConsecutiveDays
	// PlayOrgaSameDay forbids playing the day the player organizes.
	PlayOrgaSameDay
	// PlayOrgaConsecutiveDays forbids playing the day before, of, or
	// after an activity the player organizes.
	PlayOrgaConsecutiveDays

	numConstraints
)

var constraintNames = [numConstraints]string{
	"same day",
	"night then morning",
	"two consecutive days",
	"three consecutive days",
	"more consecutive days",
	"play and organize same day",
	"play and organize consecutive days",
}

func (c Constraint) String() string {
	if c < numConstraints {
		return constraintNames[c]
	}
	return fmt.Sprintf("constraint(%d)", uint8(c))
}

// ConstraintSet is a set of opt-in constraint kinds.
type ConstraintSet uint16

// NewConstraintSet validates every kind against the vocabulary.
func NewConstraintSet(kinds ...Constraint) (ConstraintSet, error) {
	var s ConstraintSet
	for _, k := range kinds {
		if k >= numConstraints {
			return 0, fmt.Errorf("unknown constraint kind %d", k)
		}
		s |= 1 << k
	}
	return s, nil
}

func (s ConstraintSet) Has(k Constraint) bool { return s&(1<<k) != 0 }

// BlacklistKind is the direction of a social exclusion between players.
type BlacklistKind uint8

const (
	// DontPlayWith excludes the pair from sharing any activity.
	// Symmetric: registering either direction forbids both.
	DontPlayWith BlacklistKind = iota
	// DontOrganizeFor keeps the target out of anything the registrant
	// organizes.
	DontOrganizeFor
	// DontBeOrganizedBy keeps the registrant out of anything the target
	// organizes.
	DontBeOrganizedBy

	numBlacklistKinds
)

// Blacklist holds the exclusion relations of one roster: one undirected
// table for don't-play-with, one directed table for the organizer kinds.
// It is built during loading and only queried afterwards.
type Blacklist struct {
	pairs    map[[2]int]bool
	directed map[directedKey]bool
}

type directedKey struct {
	kind     BlacklistKind
	from, to int
}

func NewBlacklist() *Blacklist {
	return &Blacklist{
		pairs:    make(map[[2]int]bool),
		directed: make(map[directedKey]bool),
	}
}

func (b *Blacklist) Forbid(kind BlacklistKind, from, to *Player) error {
	switch kind {
	case DontPlayWith:
		b.pairs[pairKey(from.ID, to.ID)] = true
	case DontOrganizeFor, DontBeOrganizedBy:
		b.directed[directedKey{kind, from.ID, to.ID}] = true
	default:
		return fmt.Errorf("unknown blacklist kind %d", kind)
	}
	return nil
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// PlayConflict reports whether p and q can never share an activity.
func (b *Blacklist) PlayConflict(p, q *Player) bool {
	return b.pairs[pairKey(p.ID, q.ID)]
}

// Excludes reports whether p must stay out of activities organized by
// orga, in either direction of the organizer relation.
func (b *Blacklist) Excludes(p, orga *Player) bool {
	return b.directed[directedKey{DontBeOrganizedBy, p.ID, orga.ID}] ||
		b.directed[directedKey{DontOrganizeFor, orga.ID, p.ID}]
}

// Roster owns the players and activities of one matching session and
// allocates their identifiers. Identifiers are dense: a player's id is
// its index in Players, an activity's id its index in Activities.
type Roster struct {
	players    []*Player
	activities []*Activity
	blacklist  *Blacklist
}

func NewRoster() *Roster {
	return &Roster{blacklist: NewBlacklist()}
}

func (r *Roster) Players() []*Player      { return r.players }
func (r *Roster) Activities() []*Activity { return r.activities }
func (r *Roster) Blacklist() *Blacklist   { return r.blacklist }

func (r *Roster) AddActivity(name string, capacity int, slot TimeSlot) (*Activity, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("activity %s: capacity is %d, want at least 1", name, capacity)
	}
	a := &Activity{
		ID:       len(r.activities),
		Name:     name,
		Capacity: capacity,
		Slot:     slot,
	}
	r.activities = append(r.activities, a)
	return a, nil
}

func (r *Roster) AddPlayer(name string, wishNames []string, availability map[TimeSlot]bool,
	maxActivities, idealActivities int, constraints ConstraintSet) (*Player, error) {

	if idealActivities > maxActivities {
		return nil, fmt.Errorf("player %s: ideal activity count %d exceeds the maximum %d",
			name, idealActivities, maxActivities)
	}
	p := &Player{
		ID:              len(r.players),
		Name:            name,
		Availability:    availability,
		MaxActivities:   maxActivities,
		IdealActivities: idealActivities,
		Constraints:     constraints,
		initialNames:    append([]string(nil), wishNames...),
	}
	r.players = append(r.players, p)
	return p, nil
}

// AddWish appends one activity session to the player's ranked wish list.
func (r *Roster) AddWish(p *Player, a *Activity) {
	p.Wishes = append(p.Wishes, a)
}

// SetOrganizer records that p organizes a.
func (r *Roster) SetOrganizer(a *Activity, p *Player) {
	a.Organizers = append(a.Organizers, p)
	p.Organizing = append(p.Organizing, a)
}

// PlayerByName resolves a player name case-insensitively. Several players
// sharing the name is an ErrAmbiguous; resolve those through ids.
func (r *Roster) PlayerByName(name string) (*Player, error) {
	var found *Player
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			if found != nil {
				return nil, fmt.Errorf("player %q: %w", name, ErrAmbiguous)
			}
			found = p
		}
	}
	if found == nil {
		return nil, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}
	return found, nil
}

// ActivitiesByName returns every session with the given name,
// case-insensitively.
func (r *Roster) ActivitiesByName(name string) ([]*Activity, error) {
	var acts []*Activity
	for _, a := range r.activities {
		if strings.EqualFold(a.Name, name) {
			acts = append(acts, a)
		}
	}
	if len(acts) == 0 {
		return nil, fmt.Errorf("activity %q: %w", name, ErrNotFound)
	}
	return acts, nil
}

func (r *Roster) ActivityByID(id int) (*Activity, error) {
	if id < 0 || id >= len(r.activities) {
		return nil, fmt.Errorf("activity id %d: %w", id, ErrNotFound)
	}
	return r.activities[id], nil
}
