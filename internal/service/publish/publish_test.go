package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures invocations and fails on configured commands.
type recordingRunner struct {
	calls  [][]string
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	call := append([]string{name}, args...)
	r.calls = append(r.calls, call)
	if r.failOn != "" && args[0] == r.failOn {
		return errors.New("exit status 1")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderAndPublish(t *testing.T) {
	runner := &recordingRunner{}
	svc := New(runner, discardLogger())

	err := svc.RenderAndPublish(context.Background(), "report.qmd", "https://connect.example.com")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"quarto", "render", "report.qmd"}, runner.calls[0])
	assert.Equal(t,
		[]string{"quarto", "publish", "connect", "report.qmd", "--server", "https://connect.example.com"},
		runner.calls[1])
}

func TestRenderFailureSkipsPublish(t *testing.T) {
	runner := &recordingRunner{failOn: "render"}
	svc := New(runner, discardLogger())

	err := svc.RenderAndPublish(context.Background(), "report.qmd", "https://connect.example.com")
	require.Error(t, err)
	assert.Len(t, runner.calls, 1, "publish step must not run after a failed render")
}

func TestPublishFailureIsReported(t *testing.T) {
	runner := &recordingRunner{failOn: "publish"}
	svc := New(runner, discardLogger())

	err := svc.RenderAndPublish(context.Background(), "report.qmd", "https://connect.example.com")
	require.Error(t, err)
	assert.Len(t, runner.calls, 2)
}
