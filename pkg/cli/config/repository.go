package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/repository/firestore"
	"github.com/stagehand-hq/stagehand/pkg/repository/memory"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for action store backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for store configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Action store backend type (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("STAGEHAND_STORE_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("STAGEHAND_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("STAGEHAND_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Sources:     cli.EnvVars("STAGEHAND_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes an action store based on the configured backend.
// The caller is responsible for calling Close() on the returned store.
func (r *Repository) Configure(ctx context.Context) (interfaces.ActionStore, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		store, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore store")
		}
		logging.Default().Info("Using Firestore action store",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.collectionPrefix,
		)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory action store (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", r.backend))
	}
}
