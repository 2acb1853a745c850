package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/talgya/civicsim/internal/report"
	"github.com/talgya/civicsim/internal/scenario"
	"github.com/talgya/civicsim/internal/session"
)

func newPlayCmd(a *app) *cobra.Command {
	var choices []string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play through every scenario and receive a civic profile",
		Long: "Play through the scenario catalog in order. On a terminal each decision is picked\n" +
			"interactively; otherwise pass the whole path with --choices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.cfg.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			s := session.New(cat)
			slog.Debug("run started", "run", s.ID, "scenarios", cat.Len())

			switch {
			case len(choices) > 0:
				err = playScripted(out, s, choices)
			case isTTY():
				err = playInteractive(out, s)
			default:
				return errors.New("stdin is not a terminal; pass the decision path with --choices")
			}
			if err != nil {
				return err
			}

			profile, err := s.Profile()
			if err != nil {
				return err
			}
			report.Profile(out, profile, s.Metrics(), s.WorldState(), s.History())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&choices, "choices", nil, "comma-separated choice ids, one per scenario")
	return cmd
}

func playScripted(out io.Writer, s *session.Session, choices []string) error {
	for _, id := range choices {
		sc, ok := s.Current()
		if !ok {
			return fmt.Errorf("choice %q: %w", id, session.ErrComplete)
		}
		step, total := s.Progress()
		report.Scenario(out, step+1, total, sc)

		outcome, err := s.Choose(strings.TrimSpace(id))
		if err != nil {
			return err
		}
		report.Outcome(out, outcome)
	}
	return nil
}

func playInteractive(out io.Writer, s *session.Session) error {
	for {
		sc, ok := s.Current()
		if !ok {
			return nil
		}
		step, total := s.Progress()
		report.Scenario(out, step+1, total, sc)

		idx, err := pickChoice(sc)
		if err != nil {
			return err
		}
		outcome, err := s.Choose(sc.Choices[idx].ID)
		if err != nil {
			return err
		}
		report.Outcome(out, outcome)
	}
}

func pickChoice(sc scenario.Scenario) (int, error) {
	items := make([]string, len(sc.Choices))
	for i, ch := range sc.Choices {
		items[i] = ch.Text
	}
	prompt := promptui.Select{
		Label: "What do you do?",
		Items: items,
		Size:  len(items),
	}
	idx, _, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return 0, errors.New("play interrupted")
	}
	if err != nil {
		return 0, fmt.Errorf("select choice: %w", err)
	}
	return idx, nil
}
