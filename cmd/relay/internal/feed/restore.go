package feed

import (
	"context"
	"fmt"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/repository"
)

// Restore seeds the store from the mirror so a restarted relay serves the last
// known quotes before the feed reconnects. Symbols already in the store are
// left alone. It returns the number of quotes restored.
func Restore(ctx context.Context, mirror repository.SnapshotMirror, store *quotestore.Store) (int, error) {
	quotes, err := mirror.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore snapshots: %w", err)
	}
	n := 0
	for _, q := range quotes {
		if _, ok := store.Get(q.Symbol); ok {
			continue
		}
		store.Put(q)
		n++
	}
	return n, nil
}
