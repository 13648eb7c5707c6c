// Package di wires the application together. The provider functions are
// usable both by the wire injector and by the manual InitializeContainer
// fallback used at runtime.
package di

import (
	"context"

	"go.uber.org/zap"

	"conceptbase/application/commands"
	commandbus "conceptbase/application/commands/bus"
	commandhandlers "conceptbase/application/commands/handlers"
	"conceptbase/application/ports"
	"conceptbase/application/queries"
	querybus "conceptbase/application/queries/bus"
	queryhandlers "conceptbase/application/queries/handlers"
	"conceptbase/domain/core/validators"
	"conceptbase/domain/inference"
	"conceptbase/infrastructure/config"
	"conceptbase/infrastructure/persistence/memory"
	"conceptbase/infrastructure/persistence/snapshot"
	"conceptbase/pkg/auth"
	pkgerrors "conceptbase/pkg/errors"
	"conceptbase/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         *memory.Store
	SnapshotStore ports.SnapshotStore
	Inference     *inference.Engine
	CommandBus    *commandbus.CommandBus
	QueryBus      *querybus.QueryBus
	JWTValidator  *auth.JWTValidator
	Metrics       *observability.Metrics
}

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel)
}

// ProvideSnapshotStore opens the badger-backed snapshot store.
func ProvideSnapshotStore(cfg *config.Config, logger *zap.Logger) (ports.SnapshotStore, error) {
	return snapshot.Open(cfg.SnapshotPath, logger)
}

// ProvideValidator creates the relationship validation engine.
func ProvideValidator() *validators.RelationshipValidator {
	return validators.NewRelationshipValidator()
}

// ProvideStore creates the entity store, restores the last snapshot, and
// registers the builtin relationship types.
func ProvideStore(
	ctx context.Context,
	validator *validators.RelationshipValidator,
	snapshots ports.SnapshotStore,
	logger *zap.Logger,
) (*memory.Store, error) {
	store := memory.NewStore(validator, logger)

	state, err := snapshots.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load snapshot")
	}
	if err := store.Restore(state); err != nil {
		return nil, pkgerrors.Wrap(err, "restore store")
	}
	if err := store.Bootstrap(ctx); err != nil {
		return nil, pkgerrors.Wrap(err, "bootstrap builtin types")
	}
	return store, nil
}

// ProvideInferenceEngine creates the inference engine over the store.
func ProvideInferenceEngine(store *memory.Store, logger *zap.Logger) *inference.Engine {
	return inference.NewEngine(store, logger)
}

// ProvideJWTValidator creates the bearer token validator.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideMetrics creates the metric instruments.
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideCommandBus creates the command bus with all handlers registered.
func ProvideCommandBus(store *memory.Store, metrics *observability.Metrics, logger *zap.Logger) (*commandbus.CommandBus, error) {
	b := commandbus.NewCommandBus(
		commandbus.LoggingMiddleware(logger),
		commandbus.MetricsMiddleware(metrics.CommandsTotal),
	)
	registrations := []struct {
		cmd     commandbus.Command
		handler commandbus.CommandHandler
	}{
		{commands.CreateConceptCommand{}, commandhandlers.NewCreateConceptHandler(store)},
		{commands.UpdateConceptCommand{}, commandhandlers.NewUpdateConceptHandler(store)},
		{commands.CreateRelationshipTypeCommand{}, commandhandlers.NewCreateRelationshipTypeHandler(store)},
		{commands.DeprecateRelationshipTypeCommand{}, commandhandlers.NewDeprecateRelationshipTypeHandler(store)},
		{commands.AssertRelationshipCommand{}, commandhandlers.NewAssertRelationshipHandler(store)},
		{commands.UpdateRelationshipCommand{}, commandhandlers.NewUpdateRelationshipHandler(store)},
	}
	for _, reg := range registrations {
		if err := b.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ProvideQueryBus creates the query bus with all handlers registered.
func ProvideQueryBus(store *memory.Store, engine *inference.Engine, metrics *observability.Metrics, logger *zap.Logger) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(metrics.QueriesTotal),
	)
	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetConceptQuery{}, queryhandlers.NewGetConceptHandler(store)},
		{queries.QueryConceptsQuery{}, queryhandlers.NewQueryConceptsHandler(store)},
		{queries.GetRelationshipTypeQuery{}, queryhandlers.NewGetRelationshipTypeHandler(store)},
		{queries.GetRelationshipQuery{}, queryhandlers.NewGetRelationshipHandler(store)},
		{queries.QueryRelationshipsQuery{}, queryhandlers.NewQueryRelationshipsHandler(store)},
		{queries.InferRelationshipsQuery{}, queryhandlers.NewInferRelationshipsHandler(engine)},
	}
	for _, reg := range registrations {
		if err := b.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	snapshots, err := ProvideSnapshotStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	validator := ProvideValidator()
	store, err := ProvideStore(ctx, validator, snapshots, logger)
	if err != nil {
		snapshots.Close()
		return nil, err
	}
	engine := ProvideInferenceEngine(store, logger)
	metrics := ProvideMetrics()
	commandBus, err := ProvideCommandBus(store, metrics, logger)
	if err != nil {
		snapshots.Close()
		return nil, err
	}
	queryBus, err := ProvideQueryBus(store, engine, metrics, logger)
	if err != nil {
		snapshots.Close()
		return nil, err
	}
	jwtValidator, err := ProvideJWTValidator(cfg)
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		SnapshotStore: snapshots,
		Inference:     engine,
		CommandBus:    commandBus,
		QueryBus:      queryBus,
		JWTValidator:  jwtValidator,
		Metrics:       metrics,
	}, nil
}

// Shutdown flattens the store into the snapshot database and closes it.
func (c *Container) Shutdown(ctx context.Context) error {
	state := c.Store.Export()
	if err := c.SnapshotStore.Save(ctx, state); err != nil {
		c.SnapshotStore.Close()
		return err
	}
	c.Metrics.SnapshotRecords.Set(float64(
		len(state.Concepts) + len(state.Relationships) + len(state.Types),
	))
	return c.SnapshotStore.Close()
}
