// Copyright 2025 Attune Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/attuneworks/groundwork/core"
	"github.com/panjf2000/ants/v2"
)

// ProgressFunc receives batch progress after each completed item.
// Callbacks are invoked in strictly increasing completed order.
type ProgressFunc func(completed, total int)

// BatchItem is the result of embedding one item of a batch.
// Err is set when that item failed; Vector is nil in that case.
type BatchItem struct {
	Text   string
	Vector []float32
	Err    error
}

// BatchEmbedder embeds batches of texts concurrently on a worker pool.
// Items are processed independently: one item's failure does not stop
// the others, unless the failure is in the model itself, in which case
// the whole batch fails.
type BatchEmbedder struct {
	embedder Embedder
	pool     *ants.Pool
	logger   *slog.Logger
	released bool
	mu       sync.Mutex
}

// BatchOption configures a BatchEmbedder.
type BatchOption func(*BatchEmbedder) error

// WithBatchLogger sets a custom logger.
// Default is slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBatchEmbedder creates a batch embedder with the given in-flight limit.
// A concurrency below 1 is raised to 1.
func NewBatchEmbedder(embedder Embedder, concurrency int, opts ...BatchOption) (*BatchEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if concurrency < 1 {
		concurrency = 1
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}

	b := &BatchEmbedder{
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default().With("component", "batch-embedder"),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return b, nil
}

// EmbedBatch embeds texts and returns one BatchItem per input, in input order.
// onProgress, if non-nil, is called exactly once per completed item with a
// strictly increasing completed count ending at (len(texts), len(texts)).
// A model-level failure (core.ErrModelUnavailable) aborts the batch and is
// returned as the error; per-item failures are recorded on their items.
func (b *BatchEmbedder) EmbedBatch(ctx context.Context, texts []string, onProgress ProgressFunc) ([]BatchItem, error) {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return nil, ErrBatchReleased
	}
	b.mu.Unlock()

	items := make([]BatchItem, len(texts))
	for i, text := range texts {
		items[i].Text = text
	}
	if len(texts) == 0 {
		return items, nil
	}

	var (
		wg        sync.WaitGroup
		progressM sync.Mutex
		completed int
		fatalErr  error
	)

	for i := range items {
		idx := i
		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()

			item := &items[idx]

			select {
			case <-ctx.Done():
				item.Err = ctx.Err()
			default:
				vector, err := b.embedder.EmbedText(ctx, item.Text)
				if err != nil {
					item.Err = err
				} else {
					item.Vector = vector
				}
			}

			progressM.Lock()
			defer progressM.Unlock()
			if item.Err != nil && errors.Is(item.Err, core.ErrModelUnavailable) && fatalErr == nil {
				fatalErr = item.Err
			}
			completed++
			if onProgress != nil {
				onProgress(completed, len(items))
			}
		})
		if submitErr != nil {
			wg.Done()
			// A rejected item still counts toward progress, or the
			// callback never reaches (total, total).
			progressM.Lock()
			items[idx].Err = submitErr
			completed++
			if onProgress != nil {
				onProgress(completed, len(items))
			}
			progressM.Unlock()
		}
	}

	wg.Wait()

	if fatalErr != nil {
		b.logger.Error("batch embedding aborted", "err", fatalErr)
		return nil, fatalErr
	}

	return items, nil
}

// Release shuts down the worker pool.
// The batch embedder should not be used after calling Release.
func (b *BatchEmbedder) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.pool.Release()
}
