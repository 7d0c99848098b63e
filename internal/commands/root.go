package commands

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/buildinfo"
	"github.com/insightdelivered/statement-ledger/internal/config"
)

// app carries the global flags and what PersistentPreRunE builds from
// them.
type app struct {
	configPath string
	envPath    string
	debug      bool
	verbose    bool
	logJSON    bool

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statement-ledger",
		Short: "Convert Funding Societies statements to plain-text ledger entries",
		Long: `statement-ledger reads a Funding Societies account statement (PDF or
extracted text), books every row of its transaction table and writes
ledger-cli compatible transactions. Rows it cannot classify stop the
conversion instead of being guessed.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	flags.StringVar(&a.envPath, "env", "", ".env file with LEDGER_* overrides (default ./.env if present)")
	flags.BoolVar(&a.debug, "debug", false, "debug logging and flush output after every transaction")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "informational logging")
	flags.BoolVar(&a.logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(
		newConvertCommand(a),
		newServeCommand(a),
		newWatchCommand(a),
		newHistoryCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	a.log = newLogger(logOut, a.debug, a.verbose, a.logJSON)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(a.envPath); err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.log.WithFields(logrus.Fields{
		"institution": cfg.Institution,
		"commodity":   cfg.Commodity,
		"rules":       cfg.Rules,
	}).Debug("configuration loaded")
	return nil
}

func newLogger(out io.Writer, debug, verbose, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: !isTerminal(out),
		})
	}

	switch {
	case debug:
		log.SetLevel(logrus.DebugLevel)
	case verbose:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// atLeastInfo raises the level for long-running commands.
func (a *app) atLeastInfo() {
	if a.log.GetLevel() < logrus.InfoLevel {
		a.log.SetLevel(logrus.InfoLevel)
	}
}
