package repository

import (
	"context"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

// SnapshotMirror persists the latest quote per symbol outside the process so a
// restarted relay can serve stale-but-available data before the feed reconnects.
type SnapshotMirror interface {
	Save(ctx context.Context, quotes []models.Quote) error
	GetSnapshots(ctx context.Context, symbols []string) ([]models.Quote, error)
	LoadAll(ctx context.Context) ([]models.Quote, error)
	Close() error
}
