package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/rework/internal/cache"
	"github.com/dshills/rework/internal/classify"
	"github.com/dshills/rework/internal/config"
	"github.com/dshills/rework/internal/credentials"
	"github.com/dshills/rework/internal/fsstore"
	"github.com/dshills/rework/internal/gitctx"
	"github.com/dshills/rework/internal/output"
	"github.com/dshills/rework/internal/providers"
	"github.com/dshills/rework/internal/review"
	"github.com/dshills/rework/internal/scan"
	"github.com/dshills/rework/internal/tui"
)

// Review flags
var (
	flagMode         string
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagExclude      string
	flagRules        string
	flagMaxFileBytes int
	flagYes          bool
	flagDryRun       bool
	flagPlain        bool
	flagNoCache      bool
	flagChanged      bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagMode, "mode", "", "Review mode (general, full, bugfix, performance, security, cleanup)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, anthropic, openai, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Report file path (default: stdout)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Extra exclude globs (comma-separated)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
	cmd.Flags().IntVar(&flagMaxFileBytes, "max-file-bytes", 0, "Largest file sent to the provider")
	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Apply every proposal without asking")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print proposals as diffs and never write")
	cmd.Flags().BoolVar(&flagPlain, "plain", false, "Use a line prompt instead of the full-screen diff view")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&flagChanged, "changed", false, "Only review files git reports as changed or untracked")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagMode != "" {
		m["mode"] = flagMode
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxFileBytes > 0 {
		m["maxFileBytes"] = strconv.Itoa(flagMaxFileBytes)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// reviewEnv is the process environment a session runs in.
type reviewEnv struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Terminal is true when both stdin and stderr are terminals.
	Terminal bool
	// Provider, when set, is used instead of building one from the config.
	Provider providers.Improver
}

func processEnv() reviewEnv {
	tty := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
	var in io.Reader = os.Stdin
	if !tty {
		// One buffer for every line prompt in the session.
		in = bufio.NewReader(os.Stdin)
	}
	return reviewEnv{In: in, Out: os.Stdout, Err: os.Stderr, Terminal: tty}
}

var reviewCmd = &cobra.Command{
	Use:   "review <path>",
	Short: "Review and rewrite the files under a path",
	Long: "Scan a file or directory, ask the provider for an improved version of every eligible file, " +
		"and apply each rewrite only after it has been approved.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			return err
		}
		if flagExclude != "" {
			cfg.Exclude = append(cfg.Exclude, splitComma(flagExclude)...)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			// A second interrupt terminates the process.
			<-ctx.Done()
			stop()
		}()

		exitCode = runReview(ctx, args[0], cfg, processEnv())
		return nil
	},
}

func runReview(ctx context.Context, root string, cfg config.Config, env reviewEnv) int {
	log := logger.With(zap.String("command", "review"))

	decider, err := tui.ParseDecider(flagYes, flagDryRun, flagPlain)
	if err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitUsageError
	}
	if decider == tui.Interactive && !env.Terminal {
		log.Debug("no terminal, using the line prompt")
		decider = tui.Plain
	}

	mode, err := review.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitUsageError
	}
	if flagMode == "" && decider == tui.Interactive {
		picked, ok, err := tui.PickMode(ctx, env.In, env.Err, mode)
		if err != nil {
			fmt.Fprintf(env.Err, "Error: %v\n", err)
			return ExitRuntimeError
		}
		if !ok {
			fmt.Fprintln(env.Err, "Review cancelled by user")
			return ExitCancelled
		}
		mode = picked
	}

	abortUnknown, err := classify.ParseUnknownPolicy(cfg.UnknownErrors)
	if err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitUsageError
	}
	if _, err := output.GetWriter(cfg.Format); err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitUsageError
	}
	rules, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitUsageError
	}

	candidates, err := scan.Scan(root, scan.Options{Exclude: cfg.Exclude})
	if err != nil {
		log.Warn("scan failed", zap.String("root", root), zap.Error(err))
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return ExitRuntimeError
	}
	log.Debug("scan finished", zap.String("root", root), zap.Int("candidates", len(candidates)))

	if flagChanged {
		changed, err := gitctx.Changed(root)
		if err != nil {
			log.Warn("git change detection failed", zap.String("root", root), zap.Error(err))
			fmt.Fprintf(env.Err, "Error: --changed: %v\n", err)
			return ExitRuntimeError
		}
		candidates = gitctx.Filter(candidates, changed)
		log.Debug("narrowed to changed files", zap.Int("candidates", len(candidates)))
	}

	provider := env.Provider
	switch {
	case provider != nil:
	case len(candidates) == 0:
		provider = idleProvider{name: providers.Canonical(cfg.Provider), model: cfg.Model}
	default:
		p, code := buildProvider(ctx, cfg, env, decider)
		if p == nil {
			return code
		}
		provider = withCache(p, cfg, env, log)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := &tui.Terminal{
		In:          env.In,
		Out:         env.Out,
		Err:         env.Err,
		Decider:     decider,
		DiffContext: 3,
		Cancel:      cancel,
	}
	engine := &review.Engine{
		Provider:     provider,
		Files:        fsstore.OS{},
		UI:           ui,
		Classifier:   classify.Classifier{AbortOnUnknown: abortUnknown},
		Logger:       logger,
		Mode:         mode,
		Rules:        rules,
		Root:         root,
		MaxFileBytes: cfg.MaxFileBytes,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		RedactLogs:   cfg.Privacy.RedactLogs,
		Withhold:     cfg.Privacy.WithholdPaths,
	}
	res := engine.Run(sessionCtx, candidates)

	if err := output.WriteReport(env.Out, &res, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(env.Err, "Error writing output: %v\n", err)
		return ExitRuntimeError
	}
	return exitFor(res)
}

// buildProvider obtains the credential and constructs the provider client.
// On failure it returns nil and the exit code.
func buildProvider(ctx context.Context, cfg config.Config, env reviewEnv, decider tui.Decider) (providers.Improver, int) {
	name := providers.Canonical(cfg.Provider)
	opts := providers.Options{
		Model:   cfg.Model,
		Retries: cfg.Retries,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	if providers.RequiresKey(name) {
		mgr, err := credentialManager(name, env)
		if err != nil {
			fmt.Fprintf(env.Err, "Error: %v\n", err)
			return nil, ExitRuntimeError
		}
		// Unattended runs never stop to ask about a stored key.
		mgr.Reuse = decider == tui.AutoApply || decider == tui.DryRun
		key, err := mgr.Obtain(ctx)
		if err != nil {
			if errors.Is(err, credentials.ErrUserCancelled) {
				fmt.Fprintln(env.Err, "API key entry cancelled; review not started.")
			} else {
				fmt.Fprintf(env.Err, "Error: %v\n", err)
			}
			return nil, ExitAuthError
		}
		opts.APIKey = key
	} else {
		opts.APIKey = providers.EnvKey(name)
	}

	p, err := providers.New(name, opts)
	if err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return nil, ExitUsageError
	}
	return p, ExitSuccess
}

func credentialManager(slot string, env reviewEnv) (credentials.Manager, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return credentials.Manager{}, err
	}
	return credentials.Manager{
		Store:    credentials.NewFileStore(dir),
		Prompter: &credentials.TerminalPrompter{In: env.In, Out: env.Err},
		Slot:     slot,
		FromEnv:  providers.EnvKey(slot),
	}, nil
}

func withCache(p providers.Improver, cfg config.Config, env reviewEnv, log *zap.Logger) providers.Improver {
	if flagNoCache || !cfg.Cache.Enabled {
		return p
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn("cache unavailable", zap.Error(err))
		fmt.Fprintf(env.Err, "warning: response cache disabled: %v\n", err)
		return p
	}
	if n, err := c.Prune(); err != nil {
		log.Warn("cache prune failed", zap.Error(err))
	} else if n > 0 {
		log.Debug("pruned expired cache entries", zap.Int("removed", n))
	}
	return providers.WithCache(p, c)
}

// idleProvider stands in when there is nothing to review, so an empty tree
// never asks for a credential.
type idleProvider struct{ name, model string }

func (p idleProvider) Name() string  { return p.name }
func (p idleProvider) Model() string { return p.model }

func (p idleProvider) Improve(context.Context, providers.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", errors.New("no provider configured"))
	}
}

// exitFor maps a session ending onto the process exit code.
func exitFor(res review.Result) int {
	switch res.Ending {
	case review.Cancelled:
		return ExitCancelled
	case review.Aborted:
		if res.Abort != nil && res.Abort.IsAuth() {
			return ExitAuthError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

func init() {
	addReviewFlags(reviewCmd)
}
