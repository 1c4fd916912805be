package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/rework/internal/classify"
	"github.com/dshills/rework/internal/fsstore"
	"github.com/dshills/rework/internal/normalize"
	"github.com/dshills/rework/internal/providers"
	"github.com/dshills/rework/internal/redact"
)

// Version is reported in session results.
var Version = "dev"

// Engine runs review sessions. One Engine may run several sessions, one at
// a time.
type Engine struct {
	Provider   providers.Improver
	Files      FileStore
	UI         UI
	Classifier classify.Classifier
	Logger     *zap.Logger

	Mode  Mode
	Rules *Rules
	// Root is used to shorten paths in diff labels.
	Root string

	// MaxFileBytes fails larger files locally as payload-too-large. Zero
	// disables the guard.
	MaxFileBytes int
	MaxTokens    int
	Temperature  float64

	// RedactLogs scrubs secrets from provider bodies before they are logged.
	RedactLogs bool
	// Withhold lists globs of files never sent to the provider.
	Withhold []string
}

// Run reviews candidates in order and returns the session result. The
// result is also handed to the UI. Cancelling ctx stops the session at the
// next file boundary; a provider call already in flight is allowed to finish.
func (e *Engine) Run(ctx context.Context, candidates []string) Result {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mode := e.Mode
	if mode == "" {
		mode = ModeGeneral
	}

	start := time.Now()
	res := Result{
		Tool:       "rework",
		Version:    Version,
		RunID:      uuid.NewString(),
		Provider:   e.Provider.Name(),
		Model:      e.Provider.Model(),
		Candidates: len(candidates),
		Summary:    Summary{Mode: mode},
		Files:      []FileResult{},
		StartedAt:  start,
	}
	log = log.With(zap.String("run_id", res.RunID))
	log.Info("review session started",
		zap.String("mode", string(mode)),
		zap.String("provider", res.Provider),
		zap.String("model", res.Model),
		zap.Int("candidates", len(candidates)))

	s := session{Engine: e, log: log, mode: mode, res: &res}
	s.loop(ctx, candidates)

	res.DurationMs = time.Since(start).Milliseconds()
	log.Info("review session finished",
		zap.Stringer("ending", res.Ending),
		zap.Int("reviewed", res.Summary.Reviewed),
		zap.Int("modified", res.Summary.Modified),
		zap.Int("skipped", res.Summary.Skipped),
		zap.Int("no_change", res.Summary.NoChange),
		zap.Int("errors", res.Summary.Errors))

	e.UI.Report(res)
	return res
}

// session is the state of one Run.
type session struct {
	*Engine
	log  *zap.Logger
	mode Mode
	res  *Result
}

func (s *session) record(path string, o Outcome, category, msg string) {
	s.res.Summary = s.res.Summary.Record(o)
	s.res.Files = append(s.res.Files, FileResult{Path: path, Outcome: o, Category: category, Message: msg})
}

func (s *session) loop(ctx context.Context, candidates []string) {
	total := len(candidates)
	for i, path := range candidates {
		if ctx.Err() != nil {
			s.res.Ending = Cancelled
			s.res.Reason = "Review cancelled by user"
			s.log.Info("review cancelled", zap.Int("remaining", total-i))
			return
		}

		if redact.Withheld(path, s.Withhold) {
			s.log.Info("file withheld by privacy policy", zap.String("path", path))
			s.UI.Notify(Warn, "Withheld from provider: "+path)
			continue
		}

		data, err := s.Files.Read(path)
		if err != nil {
			s.log.Warn("read failed", zap.String("path", path), zap.Error(err))
			s.UI.Notify(Warn, fsstore.Warning(err))
			continue
		}
		if len(bytes.TrimSpace(data)) == 0 {
			s.log.Debug("empty file excluded", zap.String("path", path))
			continue
		}

		s.UI.Progress(Progress{Path: path, Index: i, Total: total, Increment: 100 / float64(total)})

		if !s.review(ctx, path, string(data), i, total) {
			return
		}
	}
	s.res.Ending = Completed
	s.res.Reason = "Review complete"
}

// review drives one file to its outcome. It returns false when the session
// must stop.
func (s *session) review(ctx context.Context, path, original string, index, total int) bool {
	proposal, err := s.improve(ctx, path, original)
	if err != nil {
		return s.fail(path, err)
	}

	if normalize.Unchanged(original, proposal) {
		s.log.Info("no changes", zap.String("path", path))
		s.record(path, NoChange, "", "")
		return true
	}

	decision, err := s.UI.Confirm(ctx, Proposal{
		Path:     path,
		Label:    s.label(path),
		Original: original,
		Modified: proposal,
		Index:    index,
		Total:    total,
	})
	if err != nil {
		decision = Skip
		if ctx.Err() == nil {
			s.log.Warn("confirmation failed, skipping", zap.String("path", path), zap.Error(err))
			s.UI.Notify(Warn, fmt.Sprintf("Could not show the diff for %s: %v", path, err))
		}
	}

	if decision != Apply {
		s.log.Info("skipped", zap.String("path", path))
		s.UI.Notify(Info, "Skipped "+path)
		s.record(path, Skipped, "", "")
		return true
	}

	if err := s.Files.Write(path, []byte(proposal)); err != nil {
		warning := fsstore.Warning(err)
		s.log.Warn("write failed", zap.String("path", path), zap.Error(err))
		s.UI.Notify(Warn, warning)
		s.record(path, Skipped, "", warning)
		return true
	}
	s.log.Info("applied", zap.String("path", path), zap.Int("bytes", len(proposal)))
	s.UI.Notify(Info, "Applied changes to "+path)
	s.record(path, Applied, "", "")
	return true
}

// improve asks the provider for a rewrite and normalizes it. The call is
// detached from ctx cancellation so an in-flight request is never cut short.
func (s *session) improve(ctx context.Context, path, original string) (string, error) {
	if s.MaxFileBytes > 0 && len(original) > s.MaxFileBytes {
		return "", &providers.Error{
			Kind:     providers.KindPayloadTooLarge,
			Provider: s.Provider.Name(),
			Message:  fmt.Sprintf("file is %d bytes, limit is %d", len(original), s.MaxFileBytes),
		}
	}

	req := providers.Request{
		SystemPrompt: SystemPrompt(s.mode),
		UserPrompt:   BuildUserPrompt(path, original, s.Rules),
		MaxTokens:    s.MaxTokens,
		Temperature:  s.Temperature,
	}

	started := time.Now()
	text, err := normalize.Normalize(s.Provider.Improve(context.WithoutCancel(ctx), req))
	s.log.Debug("provider call finished",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(started)),
		zap.Bool("failed", err != nil))
	return text, err
}

// fail classifies a provider failure, records the file as an error and
// reports whether the session may continue.
func (s *session) fail(path string, err error) bool {
	v := s.Classifier.Classify(err)

	fields := []zap.Field{
		zap.String("path", path),
		zap.Stringer("category", v.Category),
		zap.Stringer("action", v.Action),
		zap.String("error", redact.ForLog(err.Error(), s.RedactLogs)),
	}
	var pe *providers.Error
	if errors.As(err, &pe) {
		fields = append(fields, zap.Int("status", pe.StatusCode))
		if pe.Body != "" {
			fields = append(fields, zap.String("body", redact.ForLog(pe.Body, s.RedactLogs)))
		}
	}
	s.log.Error("provider failure", fields...)

	s.record(path, ProviderError, v.Category.String(), v.Message)

	if v.Action == classify.Abort {
		s.res.Ending = Aborted
		s.res.Abort = &v
		s.res.Reason = fmt.Sprintf("%s: %s", v.Category, v.Message)
		return false
	}

	msg := v.Message
	if v.Action == classify.LogAndContinue {
		msg = fmt.Sprintf("%s (%s)", msg, redact.ForLog(err.Error(), s.RedactLogs))
	}
	s.UI.Notify(Warn, fmt.Sprintf("%s: %s", path, msg))
	return true
}

func (s *session) label(path string) string {
	shown := path
	if s.Root != "" {
		if rel, err := filepath.Rel(s.Root, path); err == nil && rel != "." {
			shown = rel
		}
	}
	return fmt.Sprintf("%s (%s)", shown, s.mode.Title())
}
