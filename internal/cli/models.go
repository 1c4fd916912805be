package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/rework/internal/classify"
	"github.com/dshills/rework/internal/config"
	"github.com/dshills/rework/internal/credentials"
	"github.com/dshills/rework/internal/normalize"
	"github.com/dshills/rework/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash-lite",
			"gemini-2.5-flash",
			"gemini-2.5-pro",
			"gemini-3-flash-preview",
			"gemini-3-pro-preview",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"claude-sonnet-4-6",
			"claude-opus-4-6",
			"claude-haiku-4-5",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-5.2",
			"gpt-5.2-codex",
			"gpt-4.1-mini",
			"o3-mini",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"qwen2.5-coder",
			"deepseek-coder-v2",
			"codellama",
			"llama3.3",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		def := config.Default()
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s:\n", info.Provider)
			for _, m := range info.Models {
				if info.Provider == def.Provider && m == def.Model {
					fmt.Fprintf(out, "  - %s (default)\n", m)
					continue
				}
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			return err
		}
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		providerName := providers.Canonical(cfg.Provider)
		fmt.Fprintf(out, "Checking %s (%s)...\n", providerName, cfg.Model)

		opts := providers.Options{
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			APIKey:  providers.EnvKey(providerName),
		}
		if providers.RequiresKey(providerName) && opts.APIKey == "" {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			key, err := credentials.NewFileStore(dir).Get(providerName)
			if err != nil {
				if errors.Is(err, credentials.ErrNotFound) {
					fmt.Fprintf(errOut, "FAIL: no API key for %s. Run 'rework key set --provider %s'.\n", providerName, providerName)
					exitCode = ExitAuthError
					return nil
				}
				return err
			}
			opts.APIKey = key
		}

		p, err := providers.New(providerName, opts)
		if err != nil {
			fmt.Fprintf(errOut, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, err = normalize.Collect(p.Improve(ctx, providers.Request{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		}))
		if err != nil {
			v := classify.Classifier{}.Classify(err)
			logger.Warn("doctor check failed", zap.String("provider", providerName), zap.Stringer("category", v.Category), zap.Error(err))
			fmt.Fprintf(errOut, "FAIL: %s: %s\n", v.Category, v.Message)
			if v.IsAuth() {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", providerName)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
