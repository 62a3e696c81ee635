// Package publish writes a merged snapshot to durable storage and tells the
// reader service to pick it up.
package publish

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// SnapshotWriter persists a snapshot. *store.SnapshotStore implements it.
type SnapshotWriter interface {
	Save(ctx context.Context, s snapshot.Snapshot) error
}

// Publisher writes snapshots and, once a write succeeded, notifies readers.
type Publisher struct {
	writer   SnapshotWriter
	notifier *Notifier // nil disables notification
	log      logger.Logger
}

func NewPublisher(writer SnapshotWriter, notifier *Notifier, log logger.Logger) *Publisher {
	return &Publisher{writer: writer, notifier: notifier, log: log}
}

// Publish saves s. A save failure is returned; a notification failure is
// only logged because the snapshot is already durable at that point.
func (p *Publisher) Publish(ctx context.Context, s snapshot.Snapshot) error {
	start := time.Now()
	if err := p.writer.Save(ctx, s); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Info("snapshot published",
		logger.Int("lists", len(s.Lists)),
		logger.Int("entries", s.EntryCount()),
		logger.Duration("took", time.Since(start)))

	if p.notifier == nil {
		return nil
	}
	if err := p.notifier.Notify(ctx); err != nil {
		p.log.Warn("reload notification failed",
			logger.String("url", p.notifier.url),
			logger.Error(err))
	}
	return nil
}

// Notifier asks the reader service to reload by POSTing to its reload endpoint.
type Notifier struct {
	url    string
	client *http.Client
}

// NewNotifier returns nil when url is empty, which Publisher treats as
// "no notification".
func NewNotifier(url string, timeout time.Duration) *Notifier {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{url: url, client: &http.Client{Timeout: timeout}}
}

// Notify sends one POST and treats any non-2xx answer as a failure.
func (n *Notifier) Notify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build reload request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("reload request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("reload endpoint answered %d", resp.StatusCode)
	}
	return nil
}
