package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/r9s-ai/padfmt/internal/config"
)

func TestWatcherFormatsOnSave(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	path := filepath.Join(root, "strategy.pine")
	ignored := filepath.Join(root, "notes.bin")
	require.NoError(t, os.WriteFile(ignored, []byte("{\nx\n}"), 0o600))

	events := make(chan Event, 16)
	w := New(root, config.Default(), zap.NewNop(),
		WithDebounce(20*time.Millisecond),
		WithEventHandler(func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var first Event
	require.Eventually(t, func() bool {
		// Rewrite until the watcher has registered the directory.
		if err := os.WriteFile(path, []byte("if x\ny\n"), 0o600); err != nil {
			return false
		}
		select {
		case first = <-events:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, first.Err)
	assert.Equal(t, path, first.Path)

	require.Eventually(t, func() bool {
		got, err := os.ReadFile(path)
		return err == nil && string(got) == "if x\n  y\n"
	}, 2*time.Second, 10*time.Millisecond)

	got, err := os.ReadFile(ignored)
	require.NoError(t, err)
	assert.Equal(t, "{\nx\n}", string(got))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcherRequiresAutoFormat(t *testing.T) {
	settings := config.Default()
	settings.AutoFormat = false

	err := New(t.TempDir(), settings, nil).Run(context.Background())
	require.ErrorContains(t, err, "auto_format is disabled")
}

func TestWatcherMissingRoot(t *testing.T) {
	err := New(filepath.Join(t.TempDir(), "absent"), nil, nil).Run(context.Background())
	require.ErrorContains(t, err, "watch")
}

func TestDueHonoursDebounce(t *testing.T) {
	w := New(t.TempDir(), nil, nil, WithDebounce(time.Second))
	now := time.Now()
	w.pending["fresh.js"] = now
	w.pending["stale.js"] = now.Add(-2 * time.Second)

	assert.Equal(t, []string{"stale.js"}, w.due(now))
	assert.Contains(t, w.pending, "fresh.js")
	assert.NotContains(t, w.pending, "stale.js")
}

func TestWatcherTinyDebounce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	w := New(t.TempDir(), config.Default(), zap.NewNop(), WithDebounce(time.Nanosecond))
	require.NotPanics(t, func() {
		require.NoError(t, w.Run(ctx))
	})
}
