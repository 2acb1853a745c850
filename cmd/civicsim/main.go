// Command civicsim plays the civic scenario simulation in the terminal,
// scores arbitrary states, manages the scenario content store, and serves
// the HTTP API.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/talgya/civicsim/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("civicsim failed", "error", err)
		os.Exit(1)
	}
}

// app carries resolved settings from the root command to its subcommands.
type app struct {
	v   *viper.Viper
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	var configFile string

	root := &cobra.Command{
		Use:           "civicsim",
		Short:         "Civic behaviour simulation: everyday dilemmas, measurable consequences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(a.v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.LogLevel,
			}))
			slog.SetDefault(logger)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("db", "", "SQLite scenario content store")
	flags.String("scenarios", "", "YAML scenario catalog (ignored when --db is set)")
	bindFlags(a.v, root, map[string]string{
		config.KeyLogLevel:    "log-level",
		config.KeyContentDB:   "db",
		config.KeyContentFile: "scenarios",
	})

	root.AddCommand(
		newPlayCmd(a),
		newClassifyCmd(a),
		newScenariosCmd(a),
		newContentCmd(a),
		newServeCmd(a),
	)
	return root
}

// bindFlags ties config keys to persistent or local flags of cmd.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			panic(err)
		}
	}
}

// isTTY reports whether both stdin and stdout are terminals.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
