package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxParallelIndexReads bounds the fan-out of per-member existence checks
// in GetByIndex.
const maxParallelIndexReads = 8

// indexEntry is the stored shape of one secondary index set
type indexEntry struct {
	ActionIDs []string
}

func (s *Store) indexDoc(index model.IndexKey) *firestore.DocumentRef {
	return s.client.Collection(s.indexesCollection()).Doc(index.String())
}

func (s *Store) addToIndex(ctx context.Context, index model.IndexKey, id types.ActionID) error {
	_, err := s.indexDoc(index).Set(ctx, map[string]any{
		"ActionIDs": firestore.ArrayUnion(id.String()),
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to add to index", goerr.V("index", index.String()))
	}
	return nil
}

func (s *Store) RemoveFromIndex(ctx context.Context, index model.IndexKey, id types.ActionID) error {
	_, err := s.indexDoc(index).Update(ctx, []firestore.Update{
		{Path: "ActionIDs", Value: firestore.ArrayRemove(id.String())},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to remove from index",
			goerr.V("index", index.String()), goerr.V("id", id))
	}
	return nil
}

// GetByIndex resolves the index set against the primary records. TTL
// eviction of a primary record and its index membership are not atomic, so
// each member is re-validated here: evicted members are pruned from the set
// and excluded, logically expired ones are excluded and left for the TTL
// policy to collect.
func (s *Store) GetByIndex(ctx context.Context, index model.IndexKey) ([]*model.PendingAction, error) {
	docSnap, err := s.indexDoc(index).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []*model.PendingAction{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get index", goerr.V("index", index.String()))
	}

	var entry indexEntry
	if err := docSnap.DataTo(&entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode index", goerr.V("index", index.String()))
	}

	found := make([]*model.PendingAction, len(entry.ActionIDs))
	dangling := make([]bool, len(entry.ActionIDs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelIndexReads)
	for i, rawID := range entry.ActionIDs {
		eg.Go(func() error {
			action, err := s.Get(egCtx, types.ActionID(rawID))
			switch {
			case err == nil:
				found[i] = action
			case errors.Is(err, types.ErrRecordNotFound):
				dangling[i] = true
			case errors.Is(err, types.ErrRecordExpired):
				// Excluded from the result but not pruned: the record still
				// exists until the TTL policy deletes it.
			default:
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to resolve index members", goerr.V("index", index.String()))
	}

	result := make([]*model.PendingAction, 0, len(entry.ActionIDs))
	var dead []any
	for i, rawID := range entry.ActionIDs {
		if found[i] != nil {
			result = append(result, found[i])
		}
		if dangling[i] {
			dead = append(dead, rawID)
		}
	}

	if len(dead) > 0 {
		// Self-healing prune, best-effort: a failure just means the next
		// read repeats the existence checks.
		if _, err := s.indexDoc(index).Update(ctx, []firestore.Update{
			{Path: "ActionIDs", Value: firestore.ArrayRemove(dead...)},
		}); err != nil {
			logging.From(ctx).Warn("failed to prune dangling index members",
				"index", index.String(), "count", len(dead), "error", err)
		}
	}

	return result, nil
}
