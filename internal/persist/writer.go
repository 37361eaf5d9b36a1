package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Sink accepts state snapshots. Put must not block on I/O.
type Sink interface {
	Put(key string, v any)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Put(string, any) {}

const saveTimeout = 5 * time.Second

// Writer encodes snapshots synchronously and saves them in the background.
// Only the latest snapshot per key is kept between flushes.
type Writer struct {
	repo Repository
	log  *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte

	flushMu sync.Mutex
	kick    chan struct{}
}

func NewWriter(repo Repository, log *slog.Logger) *Writer {
	return &Writer{
		repo:    repo,
		log:     log.With("component", "persist"),
		pending: make(map[string][]byte),
		kick:    make(chan struct{}, 1),
	}
}

func (w *Writer) Put(key string, v any) {
	blob, err := json.Marshal(v)
	if err != nil {
		w.log.Warn("failed to encode snapshot", "key", key, "error", err)
		return
	}

	w.mu.Lock()
	w.pending[key] = blob
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run saves pending snapshots until ctx is cancelled, then flushes once more.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if err := w.Flush(context.WithoutCancel(ctx)); err != nil {
				w.log.Warn("final flush incomplete", "error", err)
			}

			return
		case <-w.kick:
			_ = w.Flush(ctx)
		}
	}
}

// Flush saves every pending snapshot. Failed keys are retried on the next
// flush unless a newer snapshot replaced them in the meantime.
func (w *Writer) Flush(ctx context.Context) error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.mu.Unlock()

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	var errs []error

	for _, key := range keys {
		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := w.repo.Save(saveCtx, key, batch[key])
		cancel()

		if err == nil {
			continue
		}

		w.log.Warn("failed to save snapshot", "key", key, "error", err)
		errs = append(errs, fmt.Errorf("saving %s: %w", key, err))

		w.mu.Lock()
		if _, newer := w.pending[key]; !newer {
			w.pending[key] = batch[key]
		}
		w.mu.Unlock()
	}

	return errors.Join(errs...)
}
