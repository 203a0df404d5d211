package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/storage"
)

func TestClickWorkerPersists(t *testing.T) {
	mem, err := storage.CreateMemoryStorage()
	require.NoError(t, err)

	w := NewClickWorker(zap.NewNop(), mem)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.GetInChannel() <- storage.Click{ShortLinkID: "link-1", IP: "unknown", UserAgent: "test"}

	assert.Eventually(t, func() bool {
		return len(mem.Clicks()) == 1
	}, time.Second, 10*time.Millisecond)
}

type failingRepo struct{}

func (failingRepo) InsertClick(context.Context, storage.Click) error {
	return errors.New("store down")
}

func TestClickWorkerSwallowsFailures(t *testing.T) {
	w := NewClickWorker(zap.NewNop(), failingRepo{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Both sends must be accepted; failures stay inside the worker.
	w.GetInChannel() <- storage.Click{ShortLinkID: "link-1"}
	w.GetInChannel() <- storage.Click{ShortLinkID: "link-2"}

	assert.Eventually(t, func() bool {
		return len(w.in) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestClickWorkerStopsOnCancel(t *testing.T) {
	mem, err := storage.CreateMemoryStorage()
	require.NoError(t, err)

	w := NewClickWorker(zap.NewNop(), mem)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
