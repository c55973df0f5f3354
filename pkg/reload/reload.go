// Package reload swaps a new dataset into the running view when the source
// changes, either through bucket notifications on Kafka or by polling a file.
package reload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"

	"cctvmap/pkg/dataset"
	"cctvmap/pkg/model"
	"cctvmap/pkg/session"
	"cctvmap/pkg/watcher"
)

// Reloader receives a validated replacement dataset.
type Reloader interface {
	Reload(records []model.Location) session.Snapshot
}

// MessageIterator is the consumer side of a Kafka topic.
type MessageIterator interface {
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// ObjectLoader fetches the dataset named in a bucket notification.
type ObjectLoader interface {
	Matches(bucket, key string) bool
	LoadObject(ctx context.Context, bucket, key string) ([]model.Location, error)
}

func apply(target Reloader, categories []model.Category, records []model.Location, origin string) error {
	if err := dataset.Validate(records, categories); err != nil {
		return fmt.Errorf("rejected dataset from %s: %w", origin, err)
	}
	snap := target.Reload(records)
	slog.Info("Dataset reloaded", "origin", origin, "records", len(records), "visible", len(snap.Visible), "version", snap.Version)
	return nil
}

// BucketWatcher reloads the dataset when an object-created notification for
// the configured object arrives.
type BucketWatcher struct {
	messages   MessageIterator
	loader     ObjectLoader
	target     Reloader
	categories []model.Category
	logger     *slog.Logger
}

func NewBucketWatcher(messages MessageIterator, loader ObjectLoader, target Reloader, categories []model.Category) *BucketWatcher {
	return &BucketWatcher{
		messages:   messages,
		loader:     loader,
		target:     target,
		categories: categories,
		logger:     slog.With("component", "reload", "via", "kafka"),
	}
}

// Run processes messages until the channel closes or ctx is done. Every
// message is committed once handled. Malformed notifications, failed loads
// and rejected datasets are logged and skipped; the running dataset stays
// in place until the next good notification.
func (w *BucketWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.messages.Messages():
			if !ok {
				return
			}
			if err := w.handle(ctx, msg); err != nil {
				w.logger.Error("Skipping bucket notification", "offset", msg.Offset, "error", err)
			}
			if err := w.messages.CommitOffset(ctx, msg); err != nil {
				w.logger.Error("Failed to commit offset", "offset", msg.Offset, "error", err)
			}
		}
	}
}

func (w *BucketWatcher) handle(ctx context.Context, msg kafka.Message) error {
	var info notification.Info
	if err := json.Unmarshal(msg.Value, &info); err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}
	if len(info.Records) == 0 {
		return fmt.Errorf("notification has no records")
	}

	for _, rec := range info.Records {
		if !strings.HasPrefix(rec.EventName, "s3:ObjectCreated:") {
			continue
		}
		bucket := rec.S3.Bucket.Name
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("failed to decode object key %q: %w", rec.S3.Object.Key, err)
		}
		if !w.loader.Matches(bucket, key) {
			w.logger.Debug("Ignoring unrelated object", "bucket", bucket, "key", key)
			continue
		}

		records, err := w.loader.LoadObject(ctx, bucket, key)
		if err != nil {
			return err
		}
		if err := apply(w.target, w.categories, records, bucket+"/"+key); err != nil {
			return err
		}
	}
	return nil
}

// FileWatcher polls dataset files and reloads from the source on change.
type FileWatcher struct {
	watcher    *watcher.Service
	source     dataset.Source
	target     Reloader
	categories []model.Category
	interval   time.Duration
}

func NewFileWatcher(source dataset.FileSource, target Reloader, categories []model.Category, interval time.Duration) (*FileWatcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	svc, err := watcher.NewService([]string{source.Path})
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher:    svc,
		source:     source,
		target:     target,
		categories: categories,
		interval:   interval,
	}, nil
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				slog.Error("Failed to reload dataset file", "source", w.source.Name(), "error", err)
			}
		}
	}
}

// Poll reloads once if a watched file changed. It reports whether a reload
// happened.
func (w *FileWatcher) Poll(ctx context.Context) (bool, error) {
	if _, changed := w.watcher.CheckChanged(); !changed {
		return false, nil
	}
	records, err := w.source.Load(ctx)
	if err != nil {
		return false, err
	}
	if err := apply(w.target, w.categories, records, w.source.Name()); err != nil {
		return false, err
	}
	return true, nil
}
