package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/report"
)

func newClassifyCmd(_ *app) *cobra.Command {
	m := civic.InitialMetrics()
	w := civic.InitialWorldState()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a final state into an archetype with feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.Join(m.Validate(), w.Validate()); err != nil {
				return err
			}
			profile := civic.DetermineProfile(m, w, nil)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(profile)
			}
			report.Profile(out, profile, m, w, nil)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&m.CivicAwareness, "civic-awareness", m.CivicAwareness, "civic awareness (0-100)")
	f.IntVar(&m.Empathy, "empathy", m.Empathy, "empathy (0-100)")
	f.IntVar(&m.SocialTrust, "social-trust", m.SocialTrust, "social trust (0-100)")
	f.IntVar(&m.PersonalConvenience, "convenience", m.PersonalConvenience, "personal convenience (0-100)")
	f.IntVar(&w.PublicPatience, "patience", w.PublicPatience, "public patience (0-100)")
	f.IntVar(&w.CleanlinessLevel, "cleanliness", w.CleanlinessLevel, "cleanliness level (0-100)")
	f.IntVar(&w.CooperationLevel, "cooperation", w.CooperationLevel, "cooperation level (0-100)")
	f.BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}

func newScenariosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog in play order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.cfg.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			report.Catalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}
