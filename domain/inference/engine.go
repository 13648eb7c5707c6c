// Package inference derives relationships from stored ones under the
// symmetric and transitive laws of their types, propagating probability and
// confidence along each derivation path.
//
// The traversal is single-source and bounded: a visited set of
// (start, target) pairs plus the optional depth bound guarantee termination
// on cyclic graphs. Once a (start, target) pair has been emitted, no later
// path to that target is explored, so the first path found wins. Because
// edges are walked in entity-store insertion order, this policy is
// deterministic but order-sensitive.
package inference

import (
	"context"

	"go.uber.org/zap"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// GraphReader is the read-only view of the entity store the engine traverses.
// Implementations return snapshots; the engine never mutates what it reads.
type GraphReader interface {
	ConceptExists(id valueobjects.ConceptID) bool
	RelationshipType(id valueobjects.TypeID) (*entities.RelationshipType, bool)
	// OutgoingRelationships returns the stored edges leaving a concept in
	// insertion order.
	OutgoingRelationships(id valueobjects.ConceptID) []*entities.Relationship
	// IncomingRelationships returns the stored edges arriving at a concept
	// in insertion order.
	IncomingRelationships(id valueobjects.ConceptID) []*entities.Relationship
}

// ProvenanceKind tags how an inferred relationship was derived.
type ProvenanceKind string

const (
	ProvenanceDirect     ProvenanceKind = "direct"
	ProvenanceSymmetric  ProvenanceKind = "symmetric"
	ProvenanceTransitive ProvenanceKind = "transitive"
)

// Provenance identifies the source edge(s) an inferred relationship was
// derived from. Direct and Symmetric carry the originating edge id; a
// Transitive derivation carries the root edge of the chain, the final edge,
// and the accumulated probability.
type Provenance struct {
	Kind        ProvenanceKind                `json:"kind"`
	Original    valueobjects.RelationshipID   `json:"original,omitempty"`
	First       valueobjects.RelationshipID   `json:"first,omitempty"`
	Second      valueobjects.RelationshipID   `json:"second,omitempty"`
	Probability valueobjects.Fraction         `json:"probability,omitempty"`
}

// InferredRelationship is one derivation result. Creator and metadata are
// copied from the originating edge (for transitive chains, the root edge).
type InferredRelationship struct {
	From        valueobjects.ConceptID  `json:"from"`
	To          valueobjects.ConceptID  `json:"to"`
	TypeID      valueobjects.TypeID     `json:"type_id"`
	Probability valueobjects.Fraction   `json:"probability"`
	Confidence  valueobjects.Fraction   `json:"confidence"`
	Metadata    valueobjects.Metadata   `json:"metadata,omitempty"`
	Creator     valueobjects.Creator    `json:"creator"`
	Provenance  Provenance              `json:"provenance"`
}

// Query bounds one inference run. Nil optional fields mean unspecified:
// the type defaults to the well-known IS-A id, depth is unbounded, and the
// thresholds default to zero.
type Query struct {
	Start          valueobjects.ConceptID
	Type           *valueobjects.TypeID
	MaxDepth       *int
	MinProbability *valueobjects.Fraction
	MinConfidence  *valueobjects.Fraction
}

// Engine materializes direct, symmetric, and transitive derivations over a
// graph reader.
type Engine struct {
	graph  GraphReader
	logger *zap.Logger
}

// NewEngine creates an inference engine.
func NewEngine(graph GraphReader, logger *zap.Logger) *Engine {
	return &Engine{graph: graph, logger: logger}
}

// pair is one (source, target) derivation already emitted.
type pair struct {
	from valueobjects.ConceptID
	to   valueobjects.ConceptID
}

// traversal carries the per-query state.
type traversal struct {
	graph    GraphReader
	typeID   valueobjects.TypeID
	logical  entities.LogicalProperties
	maxDepth int // 0 means unbounded
	minProb  valueobjects.Fraction
	minConf  valueobjects.Fraction
	visited  map[pair]struct{}
	results  []InferredRelationship
}

// Infer runs the bounded-depth traversal. It is a pure read: an empty result
// is success, and the only failures are malformed queries.
func (e *Engine) Infer(ctx context.Context, q Query) ([]InferredRelationship, error) {
	if !e.graph.ConceptExists(q.Start) {
		return nil, pkgerrors.NewNotFoundError("starting concept")
	}

	typeID := entities.BuiltinIsA
	if q.Type != nil {
		typeID = *q.Type
	}
	relType, ok := e.graph.RelationshipType(typeID)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship type")
	}

	t := &traversal{
		graph:   e.graph,
		typeID:  typeID,
		logical: relType.Logical(),
		minProb: valueobjects.ZeroFraction(),
		minConf: valueobjects.ZeroFraction(),
		visited: make(map[pair]struct{}),
	}
	if q.MaxDepth != nil && *q.MaxDepth > 0 {
		t.maxDepth = *q.MaxDepth
	}
	if q.MinProbability != nil {
		t.minProb = *q.MinProbability
	}
	if q.MinConfidence != nil {
		t.minConf = *q.MinConfidence
	}

	// Step 1: direct edges, with symmetric mirrors.
	direct := t.collectDirect(q.Start)

	// Step 2: transitive expansion of each emitted direct edge.
	if t.logical.Transitive && (t.maxDepth == 0 || t.maxDepth > 1) {
		for _, edge := range direct {
			if err := ctx.Err(); err != nil {
				return nil, pkgerrors.NewSystemError("inference canceled", err)
			}
			t.expand(q.Start, edge, edge, edge.Probability(), edge.Confidence(), 1)
		}
	}

	e.logger.Debug("inference completed",
		zap.Uint64("start", q.Start.Uint64()),
		zap.Uint64("type", typeID.Uint64()),
		zap.Int("results", len(t.results)),
	)
	return t.results, nil
}

// collectDirect emits every stored edge leaving start with the queried type
// that clears both thresholds, plus the mirrored edge when the type is
// symmetric. It returns the direct edges that qualified, in insertion order,
// as the roots for transitive expansion.
func (t *traversal) collectDirect(start valueobjects.ConceptID) []*entities.Relationship {
	var emitted []*entities.Relationship
	for _, edge := range t.graph.OutgoingRelationships(start) {
		if edge.TypeID() != t.typeID {
			continue
		}
		if !t.meetsThresholds(edge.Probability(), edge.Confidence()) {
			continue
		}
		if _, seen := t.visited[pair{start, edge.To()}]; !seen {
			t.visited[pair{start, edge.To()}] = struct{}{}
			t.results = append(t.results, InferredRelationship{
				From:        start,
				To:          edge.To(),
				TypeID:      t.typeID,
				Probability: edge.Probability(),
				Confidence:  edge.Confidence(),
				Metadata:    edge.Metadata(),
				Creator:     edge.Creator(),
				Provenance:  Provenance{Kind: ProvenanceDirect, Original: edge.ID()},
			})
			emitted = append(emitted, edge)
		}

		if t.logical.Symmetric {
			t.emitMirror(edge)
		}
	}

	// A symmetric type also makes edges arriving at the start observable
	// from the start's side: the mirror of each incoming edge is a
	// (start -> source) derivation.
	if t.logical.Symmetric {
		for _, edge := range t.graph.IncomingRelationships(start) {
			if edge.TypeID() != t.typeID {
				continue
			}
			if !t.meetsThresholds(edge.Probability(), edge.Confidence()) {
				continue
			}
			t.emitMirror(edge)
		}
	}
	return emitted
}

// emitMirror emits the (to -> from) mirror of a stored edge with unchanged
// weights, creator, and metadata, unless that pair was already produced.
func (t *traversal) emitMirror(edge *entities.Relationship) {
	mirror := pair{edge.To(), edge.From()}
	if _, seen := t.visited[mirror]; seen {
		return
	}
	t.visited[mirror] = struct{}{}
	t.results = append(t.results, InferredRelationship{
		From:        edge.To(),
		To:          edge.From(),
		TypeID:      t.typeID,
		Probability: edge.Probability(),
		Confidence:  edge.Confidence(),
		Metadata:    edge.Metadata(),
		Creator:     edge.Creator(),
		Provenance:  Provenance{Kind: ProvenanceSymmetric, Original: edge.ID()},
	})
}

// expand walks outgoing edges of the same type from the tail of the current
// chain, accumulating probability by multiplication and confidence
// pessimistically. Both combinators are non-increasing, so once a chain
// falls below a threshold no deeper path can recover it and the subtree is
// pruned.
func (t *traversal) expand(
	start valueobjects.ConceptID,
	rootEdge, tailEdge *entities.Relationship,
	accProb, accConf valueobjects.Fraction,
	depth int,
) {
	nextDepth := depth + 1
	if t.maxDepth > 0 && nextDepth > t.maxDepth {
		return
	}
	for _, edge := range t.graph.OutgoingRelationships(tailEdge.To()) {
		if edge.TypeID() != t.typeID {
			continue
		}
		if _, seen := t.visited[pair{start, edge.To()}]; seen {
			continue
		}
		prob := accProb.Mul(edge.Probability())
		conf := valueobjects.MinCombine(accConf, edge.Confidence())
		if !t.meetsThresholds(prob, conf) {
			continue
		}
		t.visited[pair{start, edge.To()}] = struct{}{}
		t.results = append(t.results, InferredRelationship{
			From:        start,
			To:          edge.To(),
			TypeID:      t.typeID,
			Probability: prob,
			Confidence:  conf,
			Metadata:    rootEdge.Metadata(),
			Creator:     rootEdge.Creator(),
			Provenance: Provenance{
				Kind:        ProvenanceTransitive,
				First:       rootEdge.ID(),
				Second:      edge.ID(),
				Probability: prob,
			},
		})
		t.expand(start, rootEdge, edge, prob, conf, nextDepth)
	}
}

func (t *traversal) meetsThresholds(prob, conf valueobjects.Fraction) bool {
	return prob.AtLeast(t.minProb) && conf.AtLeast(t.minConf)
}
