package inference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/validators"
	"conceptbase/domain/core/valueobjects"
	"conceptbase/domain/inference"
	"conceptbase/infrastructure/persistence/memory"
	pkgerrors "conceptbase/pkg/errors"
)

type fixture struct {
	store  *memory.Store
	engine *inference.Engine
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(validators.NewRelationshipValidator(), zap.NewNop())
	require.NoError(t, store.Bootstrap(context.Background()))
	return &fixture{
		store:  store,
		engine: inference.NewEngine(store, zap.NewNop()),
		ctx:    context.Background(),
	}
}

func (f *fixture) concept(t *testing.T, name string) valueobjects.ConceptID {
	t.Helper()
	id, err := f.store.CreateConcept(f.ctx, name, "", nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	return id
}

func (f *fixture) assert(
	t *testing.T,
	from, to valueobjects.ConceptID,
	typeID valueobjects.TypeID,
	probability, confidence valueobjects.Fraction,
) valueobjects.RelationshipID {
	t.Helper()
	id, err := f.store.AssertRelationship(f.ctx, from, to, typeID, probability, confidence,
		nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	return id
}

func one() valueobjects.Fraction      { return valueobjects.OneFraction() }
func frac(n, d uint64) valueobjects.Fraction { return valueobjects.MustFraction(n, d) }

func intPtr(v int) *int { return &v }

func TestInferTransitiveChain(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")
	c := f.concept(t, "C")
	d := f.concept(t, "D")

	ab := f.assert(t, a, b, entities.BuiltinIsA, one(), one())
	bc := f.assert(t, b, c, entities.BuiltinIsA, one(), one())
	cd := f.assert(t, c, d, entities.BuiltinIsA, one(), one())

	minP, minC := one(), one()
	results, err := f.engine.Infer(f.ctx, inference.Query{
		Start:          a,
		MaxDepth:       intPtr(3),
		MinProbability: &minP,
		MinConfidence:  &minC,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	direct := results[0]
	assert.Equal(t, a, direct.From)
	assert.Equal(t, b, direct.To)
	assert.Equal(t, inference.ProvenanceDirect, direct.Provenance.Kind)
	assert.Equal(t, ab, direct.Provenance.Original)
	assert.True(t, direct.Probability.Equals(one()))

	viaB := results[1]
	assert.Equal(t, a, viaB.From)
	assert.Equal(t, c, viaB.To)
	assert.Equal(t, inference.ProvenanceTransitive, viaB.Provenance.Kind)
	assert.Equal(t, ab, viaB.Provenance.First)
	assert.Equal(t, bc, viaB.Provenance.Second)
	assert.True(t, viaB.Probability.Equals(one()))
	assert.True(t, viaB.Confidence.Equals(one()))

	viaC := results[2]
	assert.Equal(t, a, viaC.From)
	assert.Equal(t, d, viaC.To)
	assert.Equal(t, inference.ProvenanceTransitive, viaC.Provenance.Kind)
	assert.Equal(t, ab, viaC.Provenance.First)
	assert.Equal(t, cd, viaC.Provenance.Second)
	assert.True(t, viaC.Probability.Equals(one()))
}

func TestInferProbabilityDecayStopsAtThreshold(t *testing.T) {
	f := newFixture(t)

	x := f.concept(t, "X")
	y := f.concept(t, "Y")
	z := f.concept(t, "Z")
	w := f.concept(t, "W")

	f.assert(t, x, y, entities.BuiltinIsA, frac(9, 10), one())
	f.assert(t, y, z, entities.BuiltinIsA, frac(9, 10), one())
	f.assert(t, z, w, entities.BuiltinIsA, frac(9, 10), one())

	minP := frac(3, 4)
	results, err := f.engine.Infer(f.ctx, inference.Query{
		Start:          x,
		MaxDepth:       intPtr(3),
		MinProbability: &minP,
	})
	require.NoError(t, err)

	// 9/10 and 81/100 clear 3/4; 729/1000 does not (729*4 < 3*1000).
	require.Len(t, results, 2)
	assert.Equal(t, y, results[0].To)
	assert.True(t, results[0].Probability.Equals(frac(9, 10)))
	assert.Equal(t, z, results[1].To)
	assert.True(t, results[1].Probability.Equals(frac(81, 100)))
}

func TestInferSymmetric(t *testing.T) {
	f := newFixture(t)

	sibling, err := f.store.CreateRelationshipType(f.ctx, "SIBLING", "",
		entities.LogicalProperties{Symmetric: true, Irreflexive: true},
		entities.InheritanceProperties{Mode: entities.CombineMultiply},
		nil, nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)

	rover := f.concept(t, "Rover")
	spot := f.concept(t, "Spot")
	original := f.assert(t, rover, spot, sibling, frac(95, 100), frac(80, 100))

	minP, minC := frac(90, 100), frac(75, 100)
	results, err := f.engine.Infer(f.ctx, inference.Query{
		Start:          spot,
		Type:           &sibling,
		MaxDepth:       intPtr(1),
		MinProbability: &minP,
		MinConfidence:  &minC,
	})
	require.NoError(t, err)

	// Spot has no outgoing SIBLING edges; the single result is the mirror
	// of Rover -> Spot with unchanged weights.
	require.Len(t, results, 1)
	mirror := results[0]
	assert.Equal(t, spot, mirror.From)
	assert.Equal(t, rover, mirror.To)
	assert.Equal(t, inference.ProvenanceSymmetric, mirror.Provenance.Kind)
	assert.Equal(t, original, mirror.Provenance.Original)
	assert.True(t, mirror.Probability.Equals(frac(95, 100)))
	assert.True(t, mirror.Confidence.Equals(frac(80, 100)))

	// From Rover's side the same edge yields the direct result plus the
	// mirror.
	fromRover, err := f.engine.Infer(f.ctx, inference.Query{
		Start:          rover,
		Type:           &sibling,
		MaxDepth:       intPtr(1),
		MinProbability: &minP,
		MinConfidence:  &minC,
	})
	require.NoError(t, err)
	require.Len(t, fromRover, 2)
	assert.Equal(t, inference.ProvenanceDirect, fromRover[0].Provenance.Kind)
	assert.Equal(t, inference.ProvenanceSymmetric, fromRover[1].Provenance.Kind)
}

func TestInferTerminatesOnCycles(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")
	c := f.concept(t, "C")

	f.assert(t, a, b, entities.BuiltinIsA, one(), one())
	f.assert(t, b, c, entities.BuiltinIsA, one(), one())
	f.assert(t, c, a, entities.BuiltinIsA, one(), one())

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a})
	require.NoError(t, err)

	// Each (start, target) pair is emitted at most once, including the
	// cycle edge back to the start.
	seen := make(map[valueobjects.ConceptID]int)
	for _, r := range results {
		require.Equal(t, a, r.From)
		seen[r.To]++
	}
	for to, count := range seen {
		assert.Equal(t, 1, count, "target %d emitted more than once", to)
	}
	assert.Len(t, results, 3) // A->B direct, A->C and A->A transitive
}

func TestInferMaxDepthBounds(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")
	c := f.concept(t, "C")
	d := f.concept(t, "D")

	f.assert(t, a, b, entities.BuiltinIsA, one(), one())
	f.assert(t, b, c, entities.BuiltinIsA, one(), one())
	f.assert(t, c, d, entities.BuiltinIsA, one(), one())

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a, MaxDepth: intPtr(2)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, b, results[0].To)
	assert.Equal(t, c, results[1].To)

	results, err = f.engine.Infer(f.ctx, inference.Query{Start: a, MaxDepth: intPtr(1)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b, results[0].To)

	// Unbounded reaches the whole chain.
	results, err = f.engine.Infer(f.ctx, inference.Query{Start: a})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestInferThresholdMonotonicity(t *testing.T) {
	f := newFixture(t)

	x := f.concept(t, "X")
	y := f.concept(t, "Y")
	z := f.concept(t, "Z")

	f.assert(t, x, y, entities.BuiltinIsA, frac(4, 5), frac(9, 10))
	f.assert(t, y, z, entities.BuiltinIsA, frac(3, 4), frac(7, 10))

	strictP, strictC := frac(3, 5), frac(7, 10)
	strict, err := f.engine.Infer(f.ctx, inference.Query{
		Start:          x,
		MinProbability: &strictP,
		MinConfidence:  &strictC,
	})
	require.NoError(t, err)

	loose, err := f.engine.Infer(f.ctx, inference.Query{Start: x})
	require.NoError(t, err)

	// Everything emitted under strict thresholds also appears when the
	// thresholds are loosened.
	require.GreaterOrEqual(t, len(loose), len(strict))
	looseTargets := make(map[valueobjects.ConceptID]bool)
	for _, r := range loose {
		looseTargets[r.To] = true
	}
	for _, r := range strict {
		assert.True(t, looseTargets[r.To])
	}
}

func TestInferConfidencePropagatesPessimistically(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")
	c := f.concept(t, "C")

	f.assert(t, a, b, entities.BuiltinIsA, one(), frac(9, 10))
	f.assert(t, b, c, entities.BuiltinIsA, one(), frac(4, 5))

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a})
	require.NoError(t, err)
	require.Len(t, results, 2)

	derived := results[1]
	assert.Equal(t, c, derived.To)
	// min(9/10, 4/5) = 4/5, carried over the common denominator.
	assert.True(t, derived.Confidence.Equals(frac(4, 5)))
}

func TestInferNonTransitiveTypeEmitsDirectOnly(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")
	c := f.concept(t, "C")

	hasA := entities.BuiltinHasA
	f.assert(t, a, b, hasA, one(), one())
	f.assert(t, b, c, hasA, one(), one())

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a, Type: &hasA})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b, results[0].To)
	assert.Equal(t, inference.ProvenanceDirect, results[0].Provenance.Kind)
}

func TestInferDefaultsToIsA(t *testing.T) {
	f := newFixture(t)

	a := f.concept(t, "A")
	b := f.concept(t, "B")

	f.assert(t, a, b, entities.BuiltinHasA, one(), one())
	f.assert(t, a, b, entities.BuiltinIsA, frac(1, 2), one())

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Probability.Equals(frac(1, 2)))
}

func TestInferUnknownStartConcept(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Infer(f.ctx, inference.Query{Start: 404})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestInferUnknownType(t *testing.T) {
	f := newFixture(t)
	a := f.concept(t, "A")

	missing := valueobjects.TypeID(404)
	_, err := f.engine.Infer(f.ctx, inference.Query{Start: a, Type: &missing})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestInferEmptyResultIsSuccess(t *testing.T) {
	f := newFixture(t)
	a := f.concept(t, "A")

	results, err := f.engine.Infer(f.ctx, inference.Query{Start: a})
	require.NoError(t, err)
	assert.Empty(t, results)
}
