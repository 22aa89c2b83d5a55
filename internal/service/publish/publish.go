// Package publish drives the external document rendering and publishing
// toolchain: a local render step followed by a publish step to a hosting
// server. Both are plain process invocations; failures are logged, not
// retried.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Runner executes an external command. The default implementation shells
// out; tests substitute a recorder.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec, inheriting the process
// environment.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, out)
	}
	return nil
}

// Service renders and publishes Quarto documents.
type Service struct {
	runner Runner
	log    *slog.Logger
}

// New creates a publish service. A nil runner defaults to ExecRunner.
func New(runner Runner, log *slog.Logger) *Service {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Service{runner: runner, log: log}
}

// RenderAndPublish renders the document locally, then publishes it to the
// target server. The two steps are sequential; the publish step is skipped
// when rendering fails.
func (s *Service) RenderAndPublish(ctx context.Context, document, serverURL string) error {
	s.log.Info("rendering document", "document", document)
	if err := s.runner.Run(ctx, "quarto", "render", document); err != nil {
		s.log.Error("render failed", "document", document, "error", err)
		return fmt.Errorf("render %q: %w", document, err)
	}

	s.log.Info("publishing document", "document", document, "server", serverURL)
	if err := s.runner.Run(ctx, "quarto", "publish", "connect", document, "--server", serverURL); err != nil {
		s.log.Error("publish failed", "document", document, "server", serverURL, "error", err)
		return fmt.Errorf("publish %q to %s: %w", document, serverURL, err)
	}

	s.log.Info("document published", "document", document, "server", serverURL)
	return nil
}
