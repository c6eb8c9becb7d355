// Package ingest runs the directory-polling loop that feeds images into the vector index.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/gazou/internal/embedding"
	"github.com/hyperjump/gazou/internal/fileid"
	"github.com/hyperjump/gazou/internal/tracker"
	"github.com/hyperjump/gazou/internal/vector"
)

// Loop polls a source directory on a fixed interval and drives every
// uncommitted image through embed and upsert. One file is processed at a time
// and the next tick does not start until the previous pass has finished, so
// passes never overlap.
//
// An image is marked committed only after the index upsert succeeds. A failure
// at any step (read, embed, upsert) leaves the image unmarked, so it is simply
// retried on the next tick; transient failures self-heal without a dead-letter
// path.
type Loop struct {
	dir        string
	interval   time.Duration
	extensions []string
	embedder   embedding.Embedder
	index      vector.Index
	tracker    tracker.Tracker
	logger     *zap.Logger
	nudge      <-chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithNudge attaches a channel that triggers an immediate pass between ticks.
// The sender never processes files itself; the pass owns all per-file work.
func WithNudge(ch <-chan struct{}) LoopOption {
	return func(l *Loop) { l.nudge = ch }
}

// NewLoop creates a loop polling dir every interval. extensions filters which
// files are considered (empty = all).
func NewLoop(
	dir string,
	interval time.Duration,
	extensions []string,
	embedder embedding.Embedder,
	index vector.Index,
	trk tracker.Tracker,
	logger *zap.Logger,
	opts ...LoopOption,
) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		dir:        dir,
		interval:   interval,
		extensions: extensions,
		embedder:   embedder,
		index:      index,
		tracker:    trk,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run polls until ctx is cancelled. An initial pass runs immediately so images
// already present at startup do not wait a full interval.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("ingestion loop started",
		zap.String("dir", l.dir),
		zap.Duration("interval", l.interval),
	)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("ingestion loop shutdown complete")
			return
		case <-ticker.C:
			l.pass(ctx)
		case <-l.nudge:
			l.pass(ctx)
		}
	}
}

// pass lists the source directory once and processes every uncommitted entry.
// A listing failure skips the pass; the next tick retries.
func (l *Loop) pass(ctx context.Context) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.logger.Warn("failed to list source directory", zap.String("dir", l.dir), zap.Error(err))
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !matchExtension(name, l.extensions) {
			continue
		}
		id := fileid.PointID(name)
		if l.tracker.IsCommitted(id) {
			continue
		}
		l.processImage(ctx, name, id)
	}
}

// processImage runs read, embed, upsert for a single image. Any failure
// returns without marking the image committed.
func (l *Loop) processImage(ctx context.Context, name, id string) {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("failed to read image", zap.String("image", name), zap.Error(err))
		return
	}

	vec, err := l.embedder.EmbedImage(ctx, data)
	if err != nil {
		l.logger.Warn("failed to embed image", zap.String("image", name), zap.Error(err))
		return
	}

	point := vector.Point{
		ID:     id,
		Vector: vec,
		Payload: map[string]string{
			"image_name": name,
			"model":      l.embedder.ModelName(),
		},
	}
	if err := l.index.Upsert(ctx, point); err != nil {
		l.logger.Warn("failed to upsert image vector", zap.String("image", name), zap.Error(err))
		return
	}

	if err := l.tracker.MarkCommitted(id); err != nil {
		// The upsert is durable; the worst case is one redundant re-upsert.
		l.logger.Warn("failed to mark image committed", zap.String("image", name), zap.Error(err))
		return
	}
	l.logger.Info("image committed", zap.String("image", name), zap.String("point_id", id))
}

func matchExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == strings.TrimPrefix(ext, ".") {
			return true
		}
	}
	return false
}
