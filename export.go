// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actmatch

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// ExportActivitiesCSV writes one column per activity: its schedule, its
// organizers, then its cast, with a trailing seats-left marker for
// activities that are not full.
func (res *Result) ExportActivitiesCSV(w io.Writer) error {
	acts := append([]*Activity(nil), res.roster.activities...)
	sort.Slice(acts, func(i, j int) bool {
		return acts[i].Slot.start.Before(acts[j].Slot.start)
	})

	maxOrgas, maxCast := 0, 0
	for _, a := range acts {
		if len(a.Organizers) > maxOrgas {
			maxOrgas = len(a.Organizers)
		}
		if n := len(res.casts[a.ID]) + 1; n > maxCast {
			maxCast = n
		}
	}

	cw := csv.NewWriter(w)
	writeRow := func(head string, cell func(a *Activity) string) {
		row := []string{head}
		for _, a := range acts {
			row = append(row, cell(a))
		}
		cw.Write(row)
	}

	writeRow("activity", func(a *Activity) string { return a.Name })
	writeRow("day", func(a *Activity) string { return a.Slot.Day().Format("Mon 02/01") })
	writeRow("hours", func(a *Activity) string {
		return a.Slot.start.Format("15:04") + "-" + a.Slot.end.Format("15:04")
	})
	cw.Write(nil)

	head := "organizers"
	for i := 0; i < maxOrgas; i++ {
		writeRow(head, func(a *Activity) string {
			if i < len(a.Organizers) {
				return a.Organizers[i].Name
			}
			return ""
		})
		head = ""
	}
	cw.Write(nil)

	head = "players"
	for i := 0; i < maxCast; i++ {
		writeRow(head, func(a *Activity) string {
			cast := res.casts[a.ID]
			switch {
			case i < len(cast):
				return cast[i].Name
			case i == len(cast) && res.remaining[a.ID] > 0:
				return fmt.Sprintf("... %d seats left", res.remaining[a.ID])
			}
			return ""
		})
		head = ""
	}

	cw.Flush()
	return cw.Error()
}

// ExportPlayersCSV writes one column per player: their load, schedule,
// organizing list, refused wishes and unavailable wishes. Satisfied and
// refused wish names carry their rank in the initial request.
func (res *Result) ExportPlayersCSV(w io.Writer) error {
	players := append([]*Player(nil), res.roster.players...)
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })

	cw := csv.NewWriter(w)
	writeRow := func(head string, cell func(p *Player) string) {
		row := []string{head}
		for _, p := range players {
			row = append(row, cell(p))
		}
		cw.Write(row)
	}

	writeRow("player", func(p *Player) string { return p.Name })
	writeRow("activity count", func(p *Player) string {
		return fmt.Sprintf("%d/%s, max=%s", len(res.schedules[p.ID]),
			countOrDash(p.IdealActivities), countOrDash(p.MaxActivities))
	})
	cw.Write(nil)

	res.writeColumns(cw, players, "plays", func(p *Player) []string {
		var cells []string
		for _, a := range res.Schedule(p) {
			cells = append(cells, fmt.Sprintf("%s | %s", nameWithRank(p, a.Name), a.Slot))
		}
		return cells
	})
	cw.Write(nil)
	res.writeColumns(cw, players, "organizes", func(p *Player) []string {
		var cells []string
		for _, a := range p.Organizing {
			cells = append(cells, fmt.Sprintf("%s | %s", a.Name, a.Slot))
		}
		return cells
	})
	cw.Write(nil)
	res.writeColumns(cw, players, "refused", func(p *Player) []string {
		var cells []string
		for _, name := range res.refused[p.ID] {
			cells = append(cells, nameWithRank(p, name))
		}
		return cells
	})
	cw.Write(nil)
	res.writeColumns(cw, players, "unavailable", func(p *Player) []string {
		return res.unavail[p.ID]
	})

	cw.Flush()
	return cw.Error()
}

func (res *Result) writeColumns(cw *csv.Writer, players []*Player, head string,
	cells func(p *Player) []string) {

	cols := make([][]string, len(players))
	rows := 0
	for i, p := range players {
		cols[i] = cells(p)
		if len(cols[i]) > rows {
			rows = len(cols[i])
		}
	}
	for r := 0; r < rows; r++ {
		row := []string{head}
		head = ""
		for i := range players {
			if r < len(cols[i]) {
				row = append(row, cols[i][r])
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

// nameWithRank decorates a wish name with its rank in the raw request.
func nameWithRank(p *Player, name string) string {
	for i, n := range p.initialNames {
		if n == name {
			return fmt.Sprintf("%s (#%d)", name, i+1)
		}
	}
	return name
}
