// Copyright 2024 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "actmatch",
		Usage: "Utility for assigning players to activities",
		Commands: []*cli.Command{
			matchCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

var matchCmd = &cli.Command{
	Name:    "match",
	Usage:   "Compute an assignment from the registration files",
	Aliases: []string{"m"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "activities",
			Required: true,
			Usage:    "specify the input activities.csv",
		},
		&cli.StringFlag{
			Name:     "players",
			Required: true,
			Usage:    "specify the input players.csv",
		},
		&cli.IntFlag{
			Name:     "year",
			Required: false,
			Value:    time.Now().Year(),
			Usage:    "specify the year completing the slot dates",
		},
		&cli.Float64Flag{
			Name:     "decay",
			Required: false,
			Value:    0.0,
			Usage:    "specify the geometric wish decay (0.0 keeps the hyperbolic weighting)",
		},
		&cli.StringFlag{
			Name:     "adjust",
			Required: false,
			Usage:    "specify an optional adjustments.yaml",
		},
		&cli.StringFlag{
			Name:     "activities-out",
			Required: false,
			Usage:    "specify the output activities cast csv",
		},
		&cli.StringFlag{
			Name:     "players-out",
			Required: false,
			Usage:    "specify the output player schedules csv",
		},
		&cli.BoolFlag{
			Name:     "verbose",
			Required: false,
			Usage:    "trace the filtering and solving",
		},
	},
	Action: func(ctx *cli.Context) error {
		var (
			activitiesFile = ctx.String("activities")
			playersFile    = ctx.String("players")
			year           = ctx.Int("year")
			decay          = ctx.Float64("decay")
			adjustFile     = ctx.String("adjust")
			activitiesOut  = ctx.String("activities-out")
			playersOut     = ctx.String("players-out")
			verbose        = ctx.Bool("verbose")
		)
		if year < 2000 || year > 2200 {
			return errors.New("invalid year")
		}
		if decay < 0.0 || decay > 1.0 {
			return errors.New("invalid decay")
		}
		return doMatch(activitiesFile, playersFile, adjustFile,
			activitiesOut, playersOut, year, decay, verbose)
	},
}
