package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conceptbase/application/ports"
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/validators"
	"conceptbase/domain/core/valueobjects"
	"conceptbase/infrastructure/persistence/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, store.Bootstrap(ctx))

	dog, err := store.CreateConcept(ctx, "Dog", "canine",
		valueobjects.Metadata{{Key: "domain", Value: "biology"}}, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	mammal, err := store.CreateConcept(ctx, "Mammal", "", nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)

	_, err = store.AssertRelationship(ctx, dog, mammal, entities.BuiltinIsA,
		valueobjects.MustFraction(1, 1), valueobjects.MustFraction(99, 100),
		valueobjects.Metadata{{Key: "source", Value: "test"}}, valueobjects.NewCreator("alice"))
	require.NoError(t, err)

	require.NoError(t, store.DeprecateRelationshipType(ctx, entities.BuiltinPropertyOf, nil, "unused"))
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	bridge, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer bridge.Close()

	original := seedStore(t)
	state := original.Export()
	require.NoError(t, bridge.Save(ctx, state))

	loaded, err := bridge.Load(ctx)
	require.NoError(t, err)

	restored := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, restored.Restore(loaded))

	// The restored store exports an identical image: same records, same
	// order, same counters.
	assert.Equal(t, state.Counters, restored.Export().Counters)
	assert.Equal(t, len(state.Concepts), len(restored.Export().Concepts))
	assert.Equal(t, len(state.Relationships), len(restored.Export().Relationships))
	assert.Equal(t, len(state.Types), len(restored.Export().Types))

	// Adjacency caches were rebuilt from the relationship records.
	dog, err := restored.GetConcept(ctx, 0)
	require.NoError(t, err)
	require.Len(t, dog.Outgoing(), 1)
	mammal, err := restored.GetConcept(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mammal.Incoming(), 1)
	assert.Equal(t, dog.Outgoing()[0], mammal.Incoming()[0])

	// Weights survive exactly.
	rel, err := restored.GetRelationship(ctx, dog.Outgoing()[0])
	require.NoError(t, err)
	assert.True(t, rel.Confidence().Equals(valueobjects.MustFraction(99, 100)))

	// Deprecation status survives.
	propertyOf, err := restored.GetRelationshipType(ctx, entities.BuiltinPropertyOf)
	require.NoError(t, err)
	assert.True(t, propertyOf.IsDeprecated())
}

func TestSnapshotRestoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	bridge, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer bridge.Close()

	original := seedStore(t)
	require.NoError(t, bridge.Save(ctx, original.Export()))

	loaded, err := bridge.Load(ctx)
	require.NoError(t, err)

	restored := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, restored.Restore(loaded))
	firstImage := restored.Export()

	// Restoring a second time from the same snapshot produces the same
	// in-memory state.
	require.NoError(t, restored.Restore(loaded))
	assert.Equal(t, firstImage, restored.Export())
}

func TestSnapshotCountersPreserveMonotonicity(t *testing.T) {
	ctx := context.Background()
	bridge, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer bridge.Close()

	original := seedStore(t)
	require.NoError(t, bridge.Save(ctx, original.Export()))

	loaded, err := bridge.Load(ctx)
	require.NoError(t, err)
	restored := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, restored.Restore(loaded))

	// New identifiers continue after the restored counters; nothing is
	// reused.
	id, err := restored.CreateConcept(ctx, "Animal", "", nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	assert.Equal(t, valueobjects.ConceptID(2), id)
}

func TestLoadFromEmptyDatabase(t *testing.T) {
	bridge, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer bridge.Close()

	state, err := bridge.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Concepts)
	assert.Empty(t, state.Relationships)
	assert.Empty(t, state.Types)
	assert.Equal(t, ports.Counters{}, state.Counters)
}

func TestSaveReplacesPreviousImage(t *testing.T) {
	ctx := context.Background()
	bridge, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer bridge.Close()

	original := seedStore(t)
	require.NoError(t, bridge.Save(ctx, original.Export()))

	// A smaller later image fully replaces the earlier one.
	empty := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, empty.Bootstrap(ctx))
	require.NoError(t, bridge.Save(ctx, empty.Export()))

	loaded, err := bridge.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Concepts)
	assert.Empty(t, loaded.Relationships)
	assert.Len(t, loaded.Types, 4)
}
