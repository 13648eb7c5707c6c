//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"conceptbase/infrastructure/config"
)

// SuperSet is the main provider set containing all providers.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideSnapshotStore,
	ProvideValidator,
	ProvideStore,
	ProvideInferenceEngine,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTValidator,
	ProvideMetrics,
	wire.Struct(new(Container), "*"),
)

// InitializeContainerWire creates a fully wired container via wire.
func InitializeContainerWire(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
