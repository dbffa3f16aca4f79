// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader reads the activity and player rosters from the CSV files
// produced by the registration form, wires the cross-references by name,
// and runs the structural wish filtering.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/someonegg/actmatch"
)

type Options struct {
	// Year completes the DD/MM dates of the slot columns.
	Year    int
	Verbose bool
}

var constraintColumns = map[string]actmatch.Constraint{
	"no same day":                           actmatch.SameDay,
	"no night then morning":                 actmatch.NightThenMorning,
	"no two consecutive days":               actmatch.TwoConsecutiveDays,
	"no three consecutive days":             actmatch.ThreeConsecutiveDays,
	"no more consecutive days":              actmatch.MoreConsecutiveDays,
	"no play and organize same day":         actmatch.PlayOrgaSameDay,
	"no play and organize consecutive days": actmatch.PlayOrgaConsecutiveDays,
}

var blacklistColumns = map[string]actmatch.BlacklistKind{
	"dont play with":       actmatch.DontPlayWith,
	"dont organize for":    actmatch.DontOrganizeFor,
	"dont be organized by": actmatch.DontBeOrganizedBy,
}

// Load reads both files, resolves organizers, wishes and blacklists by
// name, and filters the wish lists. Unresolvable names are reported and
// skipped; ambiguous names are errors.
func Load(activitiesPath, playersPath string, opt Options) (*actmatch.Roster, error) {
	r := actmatch.NewRoster()

	orgaNames, err := loadActivities(r, activitiesPath)
	if err != nil {
		return nil, fmt.Errorf("load activity file failed: %w", err)
	}
	blNames, err := loadPlayers(r, playersPath, opt)
	if err != nil {
		return nil, fmt.Errorf("load player file failed: %w", err)
	}

	for i, a := range r.Activities() {
		for _, name := range orgaNames[i] {
			p, err := r.PlayerByName(name)
			if errors.Is(err, actmatch.ErrNotFound) {
				fmt.Printf("organizer %q of %s is not a known player\n", name, a.Name)
				continue
			}
			if err != nil {
				return nil, err
			}
			r.SetOrganizer(a, p)
		}
	}

	for _, p := range r.Players() {
		for _, wishName := range p.InitialWishNames() {
			acts, err := r.ActivitiesByName(wishName)
			if errors.Is(err, actmatch.ErrNotFound) {
				fmt.Printf("wish %q of %s matches no activity\n", wishName, p.Name)
				continue
			}
			if err != nil {
				return nil, err
			}
			for _, a := range acts {
				r.AddWish(p, a)
			}
		}
	}

	for pid, perKind := range blNames {
		p := r.Players()[pid]
		for kind, names := range perKind {
			for _, name := range names {
				q, err := r.PlayerByName(name)
				if errors.Is(err, actmatch.ErrNotFound) {
					fmt.Printf("blacklisted %q of %s is not a known player\n", name, p.Name)
					continue
				}
				if err != nil {
					return nil, err
				}
				if err := r.Blacklist().Forbid(kind, p, q); err != nil {
					return nil, err
				}
			}
		}
	}

	r.FilterWishes(opt.Verbose)
	return r, nil
}

// loadActivities expects the columns name, capacity, start, end,
// organizers (;-separated). It returns the organizer names per activity
// id, resolved later once the players exist.
func loadActivities(r *actmatch.Roster, path string) (map[int][]string, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(header, "name", "capacity", "start", "end", "organizers")
	if err != nil {
		return nil, err
	}

	orgaNames := make(map[int][]string)
	for _, row := range rows {
		name := strings.TrimSpace(row[col["name"]])
		if name == "" {
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(row[col["capacity"]]))
		if err != nil {
			return nil, fmt.Errorf("activity %s: bad capacity: %w", name, err)
		}
		start, err := parseInstant(row[col["start"]])
		if err != nil {
			return nil, fmt.Errorf("activity %s: bad start: %w", name, err)
		}
		end, err := parseInstant(row[col["end"]])
		if err != nil {
			return nil, fmt.Errorf("activity %s: bad end: %w", name, err)
		}
		slot, err := actmatch.NewTimeSlot(start, end)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", name, err)
		}
		a, err := r.AddActivity(name, capacity, slot)
		if err != nil {
			return nil, err
		}
		orgaNames[a.ID] = splitNames(row[col["organizers"]])
	}
	return orgaNames, nil
}

// loadPlayers classifies the header: the name/max_games/ideal_games
// columns, ranked wish columns (prefix "wish"), availability columns
// (slot names), constraint opt-ins and blacklists. A non-empty cell means
// available, opted-in, respectively. It returns the blacklisted names per
// player id and kind.
func loadPlayers(r *actmatch.Roster, path string, opt Options) (map[int]map[actmatch.BlacklistKind][]string, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(header, "name")
	if err != nil {
		return nil, err
	}

	var wishCols []int
	slotCols := make(map[int]actmatch.TimeSlot)
	consCols := make(map[int]actmatch.Constraint)
	blCols := make(map[int]actmatch.BlacklistKind)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if strings.HasPrefix(h, "wish") {
			wishCols = append(wishCols, i)
			continue
		}
		if c, ok := constraintColumns[h]; ok {
			consCols[i] = c
			continue
		}
		if k, ok := blacklistColumns[h]; ok {
			blCols[i] = k
			continue
		}
		slot, ok, err := ParseSlotColumn(h, opt.Year)
		if err != nil {
			return nil, err
		}
		if ok {
			slotCols[i] = slot
		}
	}
	if opt.Verbose {
		fmt.Printf("detected %d wish columns and %d slot columns\n", len(wishCols), len(slotCols))
	}

	maxCol, hasMax := findColumn(header, "max_games")
	idealCol, hasIdeal := findColumn(header, "ideal_games")

	blNames := make(map[int]map[actmatch.BlacklistKind][]string)
	for _, row := range rows {
		name := strings.TrimSpace(row[col["name"]])
		if name == "" {
			continue
		}

		var wishNames []string
		for _, i := range wishCols {
			if w := strings.TrimSpace(row[i]); w != "" {
				wishNames = append(wishNames, w)
			}
		}

		maxGames := actmatch.Unlimited
		if hasMax {
			if cell := strings.TrimSpace(row[maxCol]); cell != "" {
				maxGames, err = strconv.Atoi(cell)
				if err != nil {
					return nil, fmt.Errorf("player %s: bad max_games: %w", name, err)
				}
			}
		}
		idealGames := maxGames
		if hasIdeal {
			if cell := strings.TrimSpace(row[idealCol]); cell != "" {
				idealGames, err = strconv.Atoi(cell)
				if err != nil {
					return nil, fmt.Errorf("player %s: bad ideal_games: %w", name, err)
				}
			}
		}

		availability := make(map[actmatch.TimeSlot]bool, len(slotCols))
		for i, slot := range slotCols {
			availability[slot] = strings.TrimSpace(row[i]) != ""
		}

		var kinds []actmatch.Constraint
		for i, c := range consCols {
			if strings.TrimSpace(row[i]) != "" {
				kinds = append(kinds, c)
			}
		}
		constraints, err := actmatch.NewConstraintSet(kinds...)
		if err != nil {
			return nil, err
		}

		p, err := r.AddPlayer(name, wishNames, availability, maxGames, idealGames, constraints)
		if err != nil {
			return nil, err
		}

		perKind := make(map[actmatch.BlacklistKind][]string)
		for i, k := range blCols {
			perKind[k] = append(perKind[k], splitNames(row[i])...)
		}
		blNames[p.ID] = perKind
	}
	return blNames, nil
}

func readCSV(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return all[1:], all[0], nil
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	col := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := findColumn(header, name)
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		col[name] = i
	}
	return col, nil
}

func findColumn(header []string, name string) (int, bool) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	return 0, false
}

func splitNames(cell string) []string {
	var names []string
	for _, n := range strings.Split(cell, ";") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}
