// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"fmt"
	"math"
	"time"
)

// FilterWishes removes every structurally impossible wish from every
// player: slots the player is unavailable for, conflicts with activities
// the player organizes, and organizer blacklists. Capacity and the
// exclusivity rules between plain wishes stay with the matcher. Called
// once after loading, before the matcher is built.
func (r *Roster) FilterWishes(verbose bool) {
	for _, p := range r.players {
		r.filterPlayer(p, verbose)
	}
}

func (r *Roster) filterPlayer(p *Player, verbose bool) {
	var kept []*Activity
	for _, w := range p.Wishes {
		reason := r.rejectWish(p, w)
		if reason == "" {
			kept = append(kept, w)
			continue
		}
		if verbose {
			fmt.Printf("%s: dropped wish %v: %s\n", p.Name, w, reason)
		}
	}
	p.Wishes = kept

	// Sessions of one name are wished consecutively, so adjacent
	// deduplication yields the distinct names in rank order.
	p.rankedNames = nil
	for _, w := range p.Wishes {
		if n := len(p.rankedNames); n == 0 || p.rankedNames[n-1] != w.Name {
			p.rankedNames = append(p.rankedNames, w.Name)
		}
	}

	surviving := make(map[string]bool, len(p.rankedNames))
	for _, n := range p.rankedNames {
		surviving[n] = true
	}
	p.removedNames = nil
	seen := make(map[string]bool)
	for _, n := range p.initialNames {
		if !surviving[n] && !seen[n] {
			p.removedNames = append(p.removedNames, n)
			seen[n] = true
		}
	}
}

func (r *Roster) rejectWish(p *Player, w *Activity) string {
	for _, o := range p.Organizing {
		if w.Slot.Overlaps(o.Slot) {
			return fmt.Sprintf("organizing %s at the same time", o.Name)
		}
		if p.Constraints.Has(PlayOrgaSameDay) && w.Day().Equal(o.Day()) {
			return fmt.Sprintf("organizing %s the same day", o.Name)
		}
		if p.Constraints.Has(PlayOrgaConsecutiveDays) && dayDistance(w.Day(), o.Day()) <= 1 {
			return fmt.Sprintf("organizing %s on a consecutive day", o.Name)
		}
	}
	for slot, available := range p.Availability {
		if !available && w.Slot.Overlaps(slot) {
			return "not available"
		}
	}
	for _, orga := range w.Organizers {
		if r.blacklist.Excludes(p, orga) {
			return fmt.Sprintf("blacklist against organizer %s", orga.Name)
		}
	}
	return ""
}

// dayDistance counts calendar days between two normalized midnights.
// Rounded, not truncated: a DST transition makes the gap 23 or 25 hours.
func dayDistance(a, b time.Time) int {
	d := int(math.Round(a.Sub(b).Hours() / 24))
	if d < 0 {
		return -d
	}
	return d
}
