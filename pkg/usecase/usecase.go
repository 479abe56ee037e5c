package usecase

import (
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model/config"
	"github.com/stagehand-hq/stagehand/pkg/service/executor"
)

// UseCases bundles the application logic of the confirmation ledger.
// All collaborators are injected; the store is the only required one.
type UseCases struct {
	store    interfaces.ActionStore
	registry *executor.Registry
	preview  interfaces.PreviewRenderer
	notifier interfaces.Notifier
	confirm  *config.ConfirmConfig
	catalog  *config.Catalog
}

type Option func(*UseCases)

// WithRegistry sets the operation-to-executor mapping used at confirmation
func WithRegistry(registry *executor.Registry) Option {
	return func(u *UseCases) {
		u.registry = registry
	}
}

// WithPreviewRenderer sets the renderer used to build the human-readable
// preview at staging time. Rendering is best-effort; a failure falls back
// to a plain description.
func WithPreviewRenderer(renderer interfaces.PreviewRenderer) Option {
	return func(u *UseCases) {
		u.preview = renderer
	}
}

// WithNotifier sets the notifier invoked asynchronously on staging and on
// terminal transitions
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(u *UseCases) {
		u.notifier = notifier
	}
}

// WithConfirmConfig sets the confirmation TTL configuration
func WithConfirmConfig(cfg *config.ConfirmConfig) Option {
	return func(u *UseCases) {
		u.confirm = cfg
	}
}

// WithCatalog restricts stageable operations to the given catalog and
// supplies their default risk levels. Without a catalog any operation
// identifier is accepted.
func WithCatalog(catalog *config.Catalog) Option {
	return func(u *UseCases) {
		u.catalog = catalog
	}
}

func New(store interfaces.ActionStore, opts ...Option) *UseCases {
	u := &UseCases{
		store:    store,
		registry: executor.NewRegistry(),
		confirm:  config.NewConfirmConfig(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}
