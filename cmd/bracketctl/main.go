package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/middleware"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/services"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "bracketctl",
		Usage:  "lay out, simulate and export tournament brackets offline",
		Writer: out,
		Commands: []*cli.Command{
			newSimulateCommand(),
			newGenerateCommand(),
			newExportCommand(),
			newTokenCommand(),
		},
	}
}

func newSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "estimate how long a tournament document takes to play",
		ArgsUsage: "<document.yaml|document.json>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "runs", Value: 100, Usage: "number of simulated runs"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "seed of the first run"},
			&cli.StringFlag{Name: "chart", Usage: "write a PNG of the run durations to this path"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("a document path is required")
			}
			doc, err := export.LoadFile(path)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			sim := services.NewSimulationService(nil, nil, nil, c.Int("runs"), c.Uint64("seed"),
				logger, metrics.Noop{}, noop.NewTracerProvider().Tracer("bracketctl"))
			report, err := sim.Estimate(c.Context, doc, c.Int("runs"))
			if err != nil {
				return err
			}

			w := c.App.Writer
			fmt.Fprintf(w, "runs:     %d\n", report.Runs)
			fmt.Fprintf(w, "games:    %d..%d (mean %.1f)\n", report.MinGames, report.MaxGames, report.MeanGames)
			fmt.Fprintf(w, "duration: %s..%s (mean %s)\n", report.MinDuration, report.MaxDuration, report.MeanDuration)

			if chartPath := c.String("chart"); chartPath != "" {
				png, err := export.DurationChart(report.Durations)
				if err != nil {
					return err
				}
				if err := os.WriteFile(chartPath, png, 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "build a tournament from a preset and print the first round schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: "Tournament"},
			&cli.StringFlag{Name: "preset", Required: true, Usage: "single_elimination, double_elimination or r2g"},
			&cli.StringSliceFlag{Name: "team", Usage: "team name, repeatable"},
			&cli.IntFlag{Name: "fake", Usage: "generate this many made-up teams instead"},
			&cli.Uint64Flag{Name: "seed", Usage: "seed for team placement, 0 picks a random one"},
			&cli.DurationFlag{Name: "play", Value: 10 * time.Minute, Usage: "length of one game"},
			&cli.DurationFlag{Name: "game-wait", Value: 2 * time.Minute},
			&cli.DurationFlag{Name: "round-wait", Value: 5 * time.Minute},
			&cli.StringFlag{Name: "out", Usage: "save the tournament document to this path"},
		},
		Action: func(c *cli.Context) error {
			t, err := services.BuildTournament(services.CreateTournamentInput{
				Name:      c.String("name"),
				Preset:    c.String("preset"),
				Teams:     c.StringSlice("team"),
				FakeTeams: c.Int("fake"),
				Seed:      c.Uint64("seed"),
				Timing: export.Timing{
					Play:      export.Duration(c.Duration("play")),
					GameWait:  export.Duration(c.Duration("game-wait")),
					RoundWait: export.Duration(c.Duration("round-wait")),
				},
			})
			if err != nil {
				return err
			}

			rounds := t.Rounds()
			if len(rounds) == 0 {
				return fmt.Errorf("preset %q produced no rounds", c.String("preset"))
			}
			rnd := brackets.DefaultRandomizer
			if seed := c.Uint64("seed"); seed != 0 {
				rnd = brackets.NewRandomizer(seed)
			}
			if _, err := brackets.GenerateRound(c.Context, rounds[0], rnd); err != nil {
				return err
			}
			if err := brackets.OrderRound(rounds[0]); err != nil {
				return err
			}
			if err := printSchedule(c.App.Writer, rounds[0]); err != nil {
				return err
			}

			if out := c.String("out"); out != "" {
				return export.SaveFile(out, export.Export(t))
			}
			return nil
		},
	}
}

func printSchedule(w io.Writer, round *models.Round) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "GAME\tGROUP\tTEAMS\n")
	for _, group := range round.Groups() {
		for _, game := range group.Games() {
			names := ""
			for i, id := range game.TeamIDs {
				if i > 0 {
					names += " vs "
				}
				if team := group.Team(id); team != nil {
					names += team.Name
				} else {
					names += id
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", game.ID, group.Name, names)
		}
	}
	return tw.Flush()
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export-xlsx",
		Usage:     "write the schedule and standings of a document as a spreadsheet",
		ArgsUsage: "<document.yaml|document.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "schedule.xlsx"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("a document path is required")
			}
			doc, err := export.LoadFile(path)
			if err != nil {
				return err
			}
			t, err := export.Import(doc)
			if err != nil {
				return err
			}
			data, err := export.ScheduleWorkbook(t)
			if err != nil {
				return err
			}
			return os.WriteFile(c.String("out"), data, 0o644)
		},
	}
}

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "secret", EnvVars: []string{"JWT_SECRET_KEY"}, Required: true},
			&cli.StringFlag{Name: "subject", Value: "cli"},
			&cli.StringFlag{Name: "role", Value: middleware.RoleOrganizer},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			role := c.String("role")
			if role != middleware.RoleOrganizer && role != middleware.RoleViewer {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := middleware.IssueToken([]byte(c.String("secret")), c.String("subject"), role, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
