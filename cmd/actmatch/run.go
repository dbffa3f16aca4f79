// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/someonegg/actmatch"
	"github.com/someonegg/actmatch/loader"
)

// Adjustments is the optional operator override file, applied between
// building the model and solving it.
type Adjustments struct {
	Force []struct {
		Player   string `yaml:"player"`
		Activity string `yaml:"activity"`
	} `yaml:"force"`
	ForceID []struct {
		Player   string `yaml:"player"`
		Activity int    `yaml:"activity"`
	} `yaml:"force_id"`
	// Min left out means the activity's full capacity.
	MinOccupancy []struct {
		Activity string `yaml:"activity"`
		Min      *int   `yaml:"min"`
	} `yaml:"min_occupancy"`
	Raise []struct {
		Player string `yaml:"player"`
		Count  int    `yaml:"count"`
	} `yaml:"raise"`
}

func doMatch(activitiesFile, playersFile, adjustFile,
	activitiesOut, playersOut string,
	year int, decay float64, verbose bool) error {

	roster, err := loader.Load(activitiesFile, playersFile, loader.Options{
		Year:    year,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	matcher := &actmatch.Matcher{
		Verbose: verbose,
	}
	if decay > 0.0 {
		matcher.Coef = actmatch.Geometric(decay)
	}
	if err := matcher.Build(roster); err != nil {
		return fmt.Errorf("build model failed: %w", err)
	}

	if adjustFile != "" {
		if err := applyAdjustments(matcher, adjustFile); err != nil {
			return fmt.Errorf("apply adjustments failed: %w", err)
		}
	}

	result, err := matcher.Solve()
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}

	result.WriteActivitiesReport(os.Stdout)
	result.WritePlayersReport(os.Stdout)
	fmt.Printf("%+v\n", result.Summarize())

	if activitiesOut != "" {
		if err := writeExport(activitiesOut, result.ExportActivitiesCSV); err != nil {
			return fmt.Errorf("write activity export failed: %w", err)
		}
	}
	if playersOut != "" {
		if err := writeExport(playersOut, result.ExportPlayersCSV); err != nil {
			return fmt.Errorf("write player export failed: %w", err)
		}
	}
	return nil
}

func applyAdjustments(m *actmatch.Matcher, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var adj Adjustments
	if err := yaml.Unmarshal(data, &adj); err != nil {
		return err
	}

	for _, f := range adj.Force {
		if err := m.ForceAssign(f.Player, f.Activity); err != nil {
			return err
		}
	}
	for _, f := range adj.ForceID {
		if err := m.ForceAssignID(f.Player, f.Activity); err != nil {
			return err
		}
	}
	for _, o := range adj.MinOccupancy {
		min := -1
		if o.Min != nil {
			min = *o.Min
		}
		if err := m.SetMinOccupancy(o.Activity, min); err != nil {
			return err
		}
	}
	for _, r := range adj.Raise {
		if err := m.RaiseLoad(r.Player, r.Count); err != nil {
			return err
		}
	}
	return nil
}

func writeExport(path string, export func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
