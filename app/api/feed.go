package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/leaderboard/core/logger"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/pkg/broadcast"
)

// Feed fans admitted entries out to live viewers.
// Publish has the leaderboard.AdmitHook signature.
type Feed struct {
	broadcaster *broadcast.MemoryBroadcaster[leaderboard.Entry]
	logger      *slog.Logger
}

// NewFeed creates a feed with bufferSize pending notifications per viewer.
func NewFeed(bufferSize int, log *slog.Logger) *Feed {
	if log == nil {
		log = logger.Discard()
	}
	return &Feed{
		broadcaster: broadcast.NewMemoryBroadcaster[leaderboard.Entry](bufferSize),
		logger:      log,
	}
}

// Publish notifies viewers of an admitted entry. It never blocks on a slow
// viewer and keeps going when the submitting request is already canceled.
func (f *Feed) Publish(ctx context.Context, entry leaderboard.Entry) {
	err := f.broadcaster.Broadcast(context.WithoutCancel(ctx), broadcast.Message[leaderboard.Entry]{Data: entry})
	if err != nil && !errors.Is(err, broadcast.ErrBroadcasterClosed) {
		f.logger.WarnContext(ctx, "live feed publish failed", logger.Error(err))
	}
}

// Subscribe registers a viewer until ctx is done.
func (f *Feed) Subscribe(ctx context.Context) broadcast.Subscriber[leaderboard.Entry] {
	return f.broadcaster.Subscribe(ctx)
}

// Viewers returns the number of connected viewers.
func (f *Feed) Viewers() int {
	return f.broadcaster.Subscribers()
}

// Close disconnects every viewer.
func (f *Feed) Close() error {
	return f.broadcaster.Close()
}
