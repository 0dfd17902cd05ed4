package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/sandevgo/ragchat/pkg/retry"
)

// settleChecks bounds how long a file may keep growing before it is skipped.
const settleChecks = 20

var errStillWriting = errors.New("file is still being written")

type Uploader interface {
	RunUpload(ctx context.Context, file core.UploadFile, namespace, userID string) (core.UploadAck, error)
}

type WatchOptions struct {
	Dir        string
	Extensions []string
	Settle     time.Duration
	Namespace  string
	UserID     string
}

// Watcher uploads documents dropped into a folder. Files are handled one at a
// time because the orchestrator allows a single upload in flight.
type Watcher struct {
	uploader Uploader
	opts     WatchOptions
	poll     *retry.Retrier

	queue chan string

	mu      sync.Mutex
	queued  map[string]bool
	seen    map[string]fileStamp
	watcher *fsnotify.Watcher
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func NewWatcher(uploader Uploader, opts WatchOptions) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	return &Watcher{
		uploader: uploader,
		opts:     opts,
		poll:     retry.NewRetrier(retry.NewPollConfig(opts.Settle, settleChecks)),
		queue:    make(chan string, 64),
		queued:   make(map[string]bool),
		seen:     make(map[string]fileStamp),
	}
}

// Start blocks until ctx is done or the watcher fails.
func (w *Watcher) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "watcher").Str("dir", w.opts.Dir).Logger()

	if err := os.MkdirAll(w.opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(w.opts.Dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.opts.Dir, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	go w.worker(logger.WithContext(ctx))

	logger.Info().Strs("extensions", w.opts.Extensions).Msg("watching for documents")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(event.Name) {
				continue
			}
			w.enqueue(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	// editor swap files and partial downloads
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return HasExtension(path, w.opts.Extensions)
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.queued[path] {
		return
	}
	select {
	case w.queue <- path:
		w.queued[path] = true
	default:
		// queue full, a later write event will bring it back
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			w.mu.Lock()
			delete(w.queued, path)
			w.mu.Unlock()

			if err := w.process(ctx, path); err != nil {
				log.FromCtx(ctx).Error().Err(err).Str("file", path).Msg("failed to upload document")
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) error {
	logger := log.FromCtx(ctx)

	stamp, err := w.waitStable(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	w.mu.Lock()
	prev, done := w.seen[path]
	w.mu.Unlock()
	if done && prev == stamp {
		return nil
	}

	file, err := LoadFile(path)
	if err != nil {
		return err
	}

	ack, err := w.uploader.RunUpload(ctx, file, w.opts.Namespace, w.opts.UserID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.seen[path] = stamp
	w.mu.Unlock()

	logger.Info().
		Str("file", file.Name).
		Str("document_id", ack.DocumentID).
		Str("status", ack.Status).
		Msg("document uploaded, indexing in progress")
	return nil
}

// waitStable polls the file until two checks in a row see the same size and
// modification time.
func (w *Watcher) waitStable(ctx context.Context, path string) (fileStamp, error) {
	var last fileStamp
	first := true

	err := w.poll.Do(ctx, func() error {
		info, err := os.Stat(path)
		if err != nil {
			return retry.Permanent(err)
		}
		cur := fileStamp{size: info.Size(), modTime: info.ModTime()}
		if first || cur != last || cur.size == 0 {
			first = false
			last = cur
			return errStillWriting
		}
		return nil
	})
	if err != nil {
		return fileStamp{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return last, nil
}
