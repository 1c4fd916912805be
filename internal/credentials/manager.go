// Package credentials obtains the provider secret for a session, offering to
// reuse a stored secret or replace it with a newly entered one.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUserCancelled means the user dismissed a required prompt. Callers must
// not start a session.
var ErrUserCancelled = errors.New("credential entry cancelled")

// Prompter asks the user about credentials.
type Prompter interface {
	// ChooseReuse asks whether the stored secret should be reused. It returns
	// false to request a new secret and ErrUserCancelled on dismissal.
	ChooseReuse(ctx context.Context, slot string) (bool, error)
	// PromptSecret asks for a new secret. ErrUserCancelled on dismissal.
	PromptSecret(ctx context.Context, slot string) (string, error)
}

// Manager resolves the secret for one slot.
type Manager struct {
	Store    Store
	Prompter Prompter
	Slot     string
	// FromEnv, when non-empty, is used without touching the store.
	FromEnv string
	// Reuse skips the reuse-or-replace question when a secret is stored.
	Reuse bool
}

// Obtain returns the secret for the session.
func (m Manager) Obtain(ctx context.Context) (string, error) {
	if env := strings.TrimSpace(m.FromEnv); env != "" {
		return env, nil
	}

	stored, err := m.Store.Get(m.Slot)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if stored != "" {
		if m.Reuse || m.Prompter == nil {
			return stored, nil
		}
		reuse, err := m.Prompter.ChooseReuse(ctx, m.Slot)
		if err != nil {
			return "", err
		}
		if reuse {
			return stored, nil
		}
	}

	if m.Prompter == nil {
		return "", fmt.Errorf("%w for %s", ErrNotFound, m.Slot)
	}
	return m.promptAndStore(ctx)
}

// Replace always prompts for a new secret and stores it.
func (m Manager) Replace(ctx context.Context) (string, error) {
	if m.Prompter == nil {
		return "", fmt.Errorf("no prompter available for %s", m.Slot)
	}
	return m.promptAndStore(ctx)
}

func (m Manager) promptAndStore(ctx context.Context) (string, error) {
	secret, err := m.Prompter.PromptSecret(ctx, m.Slot)
	if err != nil {
		return "", err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrUserCancelled
	}
	if err := m.Store.Set(m.Slot, secret); err != nil {
		return "", fmt.Errorf("storing credential: %w", err)
	}
	return secret, nil
}
