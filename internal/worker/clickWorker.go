// Package worker contains background consumers for fire-and-forget side
// effects. Failures are logged and swallowed; producers never block on them.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/storage"
)

// clickQueueSize buffers bursts of redirects; overflow is dropped by the
// producer side.
const clickQueueSize = 256

// Repo is the slice of the store the worker needs.
type Repo interface {
	InsertClick(context.Context, storage.Click) error
}

// ClickWorker persists click events from its channel one at a time.
type ClickWorker struct {
	in     chan storage.Click
	logger *zap.Logger
	repo   Repo
}

func NewClickWorker(logger *zap.Logger, repo Repo) *ClickWorker {
	return &ClickWorker{
		in:     make(chan storage.Click, clickQueueSize),
		logger: logger,
		repo:   repo,
	}
}

// GetInChannel exposes the send side of the click queue.
func (w *ClickWorker) GetInChannel() chan<- storage.Click {
	return w.in
}

// Run consumes the queue until ctx is canceled.
func (w *ClickWorker) Run(ctx context.Context) {
	for {
		select {
		case click := <-w.in:
			w.persist(click)
		case <-ctx.Done():
			return
		}
	}
}

func (w *ClickWorker) persist(click storage.Click) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := w.repo.InsertClick(ctx, click); err != nil {
		w.logger.Error("cannot record click", zap.String("shortLinkID", click.ShortLinkID), zap.Error(err))
	}
}
