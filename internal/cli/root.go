package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/rework/internal/config"
	"github.com/dshills/rework/internal/logging"
	"github.com/dshills/rework/internal/review"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
	ExitCancelled    = 5
)

// Persistent flags
var (
	flagVerbose bool
	flagConfig  string
)

var (
	logger      = zap.NewNop()
	closeLogger func() error
)

var rootCmd = &cobra.Command{
	Use:   "rework",
	Short: "Rewrite source files with an LLM, one reviewed diff at a time",
	Long: "Rework walks a file tree, asks an LLM provider for an improved version of each source file, " +
		"and applies a rewrite only after you have reviewed the full diff.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logFile := ""
		if cfg, err := config.Load(flagConfig, nil); err == nil {
			logFile = cfg.LogFile
		}
		l, closeFn, err := logging.New(logging.Options{Verbose: flagVerbose, File: logFile})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger, closeLogger = l, closeFn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	review.Version = version

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (JSON or YAML)")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print rework version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rework version %s\n", version)
	},
}
