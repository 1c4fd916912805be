package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/rework/internal/config"
	"github.com/dshills/rework/internal/credentials"
	"github.com/dshills/rework/internal/providers"
)

var flagKeyProvider string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored provider API key",
}

// keySlot returns the credential slot for the selected provider.
func keySlot() (string, error) {
	if flagKeyProvider != "" {
		return providers.Canonical(flagKeyProvider), nil
	}
	cfg, err := config.Load(flagConfig, nil)
	if err != nil {
		return "", err
	}
	return providers.Canonical(cfg.Provider), nil
}

func keyStore() (*credentials.FileStore, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return credentials.NewFileStore(dir), nil
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Enter and store a new API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := keySlot()
		if err != nil {
			return err
		}
		store, err := keyStore()
		if err != nil {
			return err
		}
		mgr := credentials.Manager{
			Store:    store,
			Prompter: &credentials.TerminalPrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()},
			Slot:     slot,
		}
		if _, err := mgr.Replace(cmd.Context()); err != nil {
			if errors.Is(err, credentials.ErrUserCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "API key entry cancelled.")
				exitCode = ExitAuthError
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s.\n", slot)
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := keySlot()
		if err != nil {
			return err
		}
		store, err := keyStore()
		if err != nil {
			return err
		}
		if err := store.Delete(slot); err != nil {
			return fmt.Errorf("deleting API key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored API key for %s.\n", slot)
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key will come from",
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := keySlot()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !providers.RequiresKey(slot) {
			fmt.Fprintf(out, "%s: no API key required\n", slot)
			return nil
		}
		if providers.EnvKey(slot) != "" {
			fmt.Fprintf(out, "%s: using the key from the environment\n", slot)
			return nil
		}
		store, err := keyStore()
		if err != nil {
			return err
		}
		switch _, err := store.Get(slot); {
		case err == nil:
			fmt.Fprintf(out, "%s: using the stored key\n", slot)
		case errors.Is(err, credentials.ErrNotFound):
			fmt.Fprintf(out, "%s: no key; you will be asked for one\n", slot)
		default:
			return err
		}
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyStatusCmd)
	keyCmd.PersistentFlags().StringVar(&flagKeyProvider, "provider", "", "Provider whose key to manage (default: configured provider)")
}
