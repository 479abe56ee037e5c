package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is the Firestore ActionStore backend. CompareAndTransition runs
// inside a Firestore transaction, which is the atomicity primitive the
// exactly-once claim rests on. Physical eviction of expired records is
// performed by a Firestore TTL policy on the ExpiresAt field (applied by
// the migrate command); every read additionally enforces expiry logically,
// since Firestore TTL deletion can lag ExpiresAt by up to 24 hours.
type Store struct {
	client           *firestore.Client
	collectionPrefix string
	now              func() time.Time
}

var _ interfaces.ActionStore = &Store{}

type Option func(*Store)

// WithCollectionPrefix namespaces all collections, e.g. for shared projects
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) {
		s.collectionPrefix = prefix
	}
}

// New creates a Firestore-backed store. databaseID may be empty for the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Store, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	s := &Store{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) actionsCollection() string {
	if s.collectionPrefix != "" {
		return s.collectionPrefix + "_pending_actions"
	}
	return "pending_actions"
}

func (s *Store) indexesCollection() string {
	if s.collectionPrefix != "" {
		return s.collectionPrefix + "_action_indexes"
	}
	return "action_indexes"
}

func (s *Store) actionDoc(id types.ActionID) *firestore.DocumentRef {
	return s.client.Collection(s.actionsCollection()).Doc(id.String())
}

func (s *Store) Put(ctx context.Context, action *model.PendingAction, ttl time.Duration, indexes []model.IndexKey) error {
	if err := action.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid action ID")
	}

	stored := action.Clone()
	if ttl > 0 {
		stored.ExpiresAt = s.now().UTC().Add(ttl)
	}

	if _, err := s.actionDoc(action.ID).Set(ctx, stored); err != nil {
		return goerr.Wrap(err, "failed to put action", goerr.V("id", action.ID))
	}

	// Index membership is written after the primary record and is not
	// atomic with it. Indexes are derived data; readers re-validate every
	// member against the primary record.
	for _, index := range indexes {
		if err := s.addToIndex(ctx, index, action.ID); err != nil {
			return goerr.Wrap(err, "failed to index action",
				goerr.V("id", action.ID), goerr.V("index", index.String()))
		}
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id types.ActionID) (*model.PendingAction, error) {
	docSnap, err := s.actionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}

	var action model.PendingAction
	if err := docSnap.DataTo(&action); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
	}

	if action.IsExpired(s.now()) {
		return nil, goerr.Wrap(types.ErrRecordExpired, "action TTL elapsed", goerr.V("id", id))
	}

	return &action, nil
}

func (s *Store) Delete(ctx context.Context, id types.ActionID, indexes []model.IndexKey) error {
	docRef := s.actionDoc(id)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check action existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete action", goerr.V("id", id))
	}

	for _, index := range indexes {
		// Best-effort: a leftover member is healed by the next index read
		_ = s.RemoveFromIndex(ctx, index, id)
	}

	return nil
}

func (s *Store) CompareAndTransition(ctx context.Context, id types.ActionID, cond interfaces.TransitionCondition, apply func(*model.PendingAction)) (*model.PendingAction, error) {
	docRef := s.actionDoc(id)

	var updated *model.PendingAction
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get action in transaction", goerr.V("id", id))
		}

		var record model.PendingAction
		if err := docSnap.DataTo(&record); err != nil {
			return goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
		}

		if cond.Owner != "" && record.OwnerID != cond.Owner {
			return goerr.Wrap(types.ErrOwnerMismatch, "action belongs to another user",
				goerr.V("id", id))
		}
		if cond.FromStatus != "" && record.Status != cond.FromStatus {
			return goerr.Wrap(types.ErrStatusConflict, "action is not in the required status",
				goerr.V("id", id), goerr.V("status", record.Status), goerr.V("required", cond.FromStatus))
		}
		if !cond.Now.IsZero() && record.IsExpired(cond.Now) {
			return goerr.Wrap(types.ErrRecordExpired, "action TTL elapsed", goerr.V("id", id))
		}

		updated = record.Clone()
		apply(updated)

		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Store) SetTTL(ctx context.Context, id types.ActionID, ttl time.Duration) error {
	_, err := s.actionDoc(id).Update(ctx, []firestore.Update{
		{Path: "ExpiresAt", Value: s.now().UTC().Add(ttl)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to set TTL", goerr.V("id", id))
	}
	return nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
