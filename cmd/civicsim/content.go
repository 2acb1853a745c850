package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/civicsim/internal/persistence"
	"github.com/talgya/civicsim/internal/scenario"
)

var errNoDB = errors.New("no content store; set --db or content.db")

func newContentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage the SQLite scenario content store",
	}

	var from string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the store's catalog with a YAML file or the built-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ContentDB == "" {
				return errNoDB
			}
			cat, source := scenario.Default(), "embedded"
			if from != "" {
				var err error
				if cat, err = scenario.LoadFile(from); err != nil {
					return err
				}
				source = from
			}

			db, err := persistence.Open(a.cfg.ContentDB)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SaveCatalog(cmd.Context(), cat, source); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d scenarios from %s into %s\n", cat.Len(), source, a.cfg.ContentDB)
			return nil
		},
	}
	importCmd.Flags().StringVar(&from, "from", "", "YAML catalog to import (default: built-in catalog)")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store's catalog to stdout as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ContentDB == "" {
				return errNoDB
			}
			db, err := persistence.Open(a.cfg.ContentDB)
			if err != nil {
				return err
			}
			defer db.Close()

			cat, err := db.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return scenario.Encode(cmd.OutOrStdout(), cat)
		},
	}

	cmd.AddCommand(importCmd, exportCmd)
	return cmd
}
