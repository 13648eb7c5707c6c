// Package memory holds the entity store: the three in-memory mappings for
// concepts, relationships, and relationship types, each keyed by
// monotonically increasing identifiers, plus the adjacency caches that keep
// graph traversal cheap.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"conceptbase/application/ports"
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/validators"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// Store owns all records. Every mutating operation runs as one critical
// section under the writer lock, so invariants are never observed in an
// intermediate state; reads take the reader lock and return deep snapshots.
type Store struct {
	mu sync.RWMutex

	concepts      map[valueobjects.ConceptID]*entities.Concept
	relationships map[valueobjects.RelationshipID]*entities.Relationship
	types         map[valueobjects.TypeID]*entities.RelationshipType

	conceptOrder      []valueobjects.ConceptID
	relationshipOrder []valueobjects.RelationshipID
	typeOrder         []valueobjects.TypeID

	nextConcept      uint64
	nextRelationship uint64
	nextType         uint64

	validator *validators.RelationshipValidator
	logger    *zap.Logger
}

// NewStore creates an empty store.
func NewStore(validator *validators.RelationshipValidator, logger *zap.Logger) *Store {
	return &Store{
		concepts:      make(map[valueobjects.ConceptID]*entities.Concept),
		relationships: make(map[valueobjects.RelationshipID]*entities.Relationship),
		types:         make(map[valueobjects.TypeID]*entities.RelationshipType),
		validator:     validator,
		logger:        logger,
	}
}

// builtinType describes one well-known type registered at bootstrap.
type builtinType struct {
	name    string
	logical entities.LogicalProperties
	inherit entities.InheritanceProperties
}

var builtinTypes = []builtinType{
	{
		name:    "IS-A",
		logical: entities.LogicalProperties{Transitive: true, Irreflexive: true},
		inherit: entities.InheritanceProperties{Inheritable: true, Mode: entities.CombineMultiply},
	},
	{
		name:    "HAS-A",
		logical: entities.LogicalProperties{Irreflexive: true},
		inherit: entities.InheritanceProperties{Inheritable: true, Mode: entities.CombineMultiply},
	},
	{
		name:    "PART-OF",
		logical: entities.LogicalProperties{Transitive: true, Irreflexive: true},
		inherit: entities.InheritanceProperties{Inheritable: false, Mode: entities.CombineMultiply},
	},
	{
		name:    "PROPERTY-OF",
		logical: entities.LogicalProperties{Irreflexive: true},
		inherit: entities.InheritanceProperties{Inheritable: true, Mode: entities.CombineMultiply},
	},
}

// Bootstrap registers the four well-known relationship types (IS-A, HAS-A,
// PART-OF, PROPERTY-OF) under their reserved identifiers 0 through 3. A name
// collision means the store was already initialized and is not an error.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creator := valueobjects.NewCreator("system")
	for _, builtin := range builtinTypes {
		if s.activeTypeByName(builtin.name) != nil {
			continue
		}
		id := valueobjects.TypeID(s.nextType)
		relType, err := entities.NewRelationshipType(
			id, builtin.name, "", builtin.logical, builtin.inherit, nil, nil, creator,
		)
		if err != nil {
			return pkgerrors.Wrapf(err, "bootstrap type %s", builtin.name)
		}
		s.nextType++
		s.types[id] = relType
		s.typeOrder = append(s.typeOrder, id)
		s.logger.Info("registered builtin relationship type",
			zap.String("name", builtin.name),
			zap.Uint64("id", id.Uint64()),
		)
	}
	return nil
}

// CreateConcept allocates a fresh identifier and writes the concept.
func (s *Store) CreateConcept(
	ctx context.Context,
	name, description string,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
) (valueobjects.ConceptID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := valueobjects.ConceptID(s.nextConcept)
	concept, err := entities.NewConcept(id, name, description, metadata, creator)
	if err != nil {
		return 0, err
	}
	s.nextConcept++
	s.concepts[id] = concept
	s.conceptOrder = append(s.conceptOrder, id)

	s.logger.Debug("concept created",
		zap.Uint64("id", id.Uint64()),
		zap.String("name", name),
		zap.String("principal", creator.Principal),
	)
	return id, nil
}

// UpdateConcept applies a patch. Only the original creator may mutate the
// record; identity and creator never change, and modifiedAt is refreshed.
func (s *Store) UpdateConcept(
	ctx context.Context,
	id valueobjects.ConceptID,
	patch ports.ConceptPatch,
	principal string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	concept, ok := s.concepts[id]
	if !ok {
		return pkgerrors.NewNotFoundError("concept")
	}
	if concept.Creator().Principal != principal {
		return pkgerrors.NewPermissionDeniedError("modify", "concept", "caller is not the creator")
	}

	changed := false
	if patch.Name != nil {
		renamed, err := concept.Rename(*patch.Name)
		if err != nil {
			return err
		}
		changed = changed || renamed
	}
	if patch.Description != nil {
		changed = concept.SetDescription(*patch.Description) || changed
	}
	if patch.HasMetadata {
		changed = concept.SetMetadata(patch.Metadata) || changed
	}
	if !changed {
		return pkgerrors.NewInvalidOperationError("concept update changes no fields")
	}
	return nil
}

// GetConcept returns a deep snapshot.
func (s *Store) GetConcept(ctx context.Context, id valueobjects.ConceptID) (*entities.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concept, ok := s.concepts[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("concept")
	}
	return concept.Clone(), nil
}

// QueryConcepts filters concepts by the AND-combined criteria, preserving
// insertion order.
func (s *Store) QueryConcepts(ctx context.Context, q ports.ConceptQuery) ([]*entities.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*entities.Concept
	for _, id := range s.conceptOrder {
		concept := s.concepts[id]
		if !matchesConcept(concept, q) {
			continue
		}
		results = append(results, concept.Clone())
	}
	return results, nil
}

// CreateRelationshipType registers a new type. Names are unique among active
// types.
func (s *Store) CreateRelationshipType(
	ctx context.Context,
	name, description string,
	logical entities.LogicalProperties,
	inheritance entities.InheritanceProperties,
	rules []entities.ValidationRule,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
) (valueobjects.TypeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.activeTypeByName(name); existing != nil {
		return 0, pkgerrors.NewAlreadyExistsError(
			fmt.Sprintf("an active relationship type named %q already exists", name),
		)
	}

	id := valueobjects.TypeID(s.nextType)
	relType, err := entities.NewRelationshipType(id, name, description, logical, inheritance, rules, metadata, creator)
	if err != nil {
		return 0, err
	}
	s.nextType++
	s.types[id] = relType
	s.typeOrder = append(s.typeOrder, id)

	s.logger.Debug("relationship type created",
		zap.Uint64("id", id.Uint64()),
		zap.String("name", name),
	)
	return id, nil
}

// GetRelationshipType returns a deep snapshot.
func (s *Store) GetRelationshipType(ctx context.Context, id valueobjects.TypeID) (*entities.RelationshipType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	relType, ok := s.types[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship type")
	}
	return relType.Clone(), nil
}

// DeprecateRelationshipType transitions a type to deprecated. The type is
// retained so existing relationships remain interpretable; its identifier is
// never reused.
func (s *Store) DeprecateRelationshipType(
	ctx context.Context,
	id valueobjects.TypeID,
	replacedBy *valueobjects.TypeID,
	reason string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	relType, ok := s.types[id]
	if !ok {
		return pkgerrors.NewNotFoundError("relationship type")
	}
	if replacedBy != nil {
		if _, ok := s.types[*replacedBy]; !ok {
			return pkgerrors.NewNotFoundError("replacement relationship type")
		}
	}
	if err := relType.Deprecate(replacedBy, reason); err != nil {
		return err
	}
	s.logger.Info("relationship type deprecated",
		zap.Uint64("id", id.Uint64()),
		zap.String("reason", reason),
	)
	return nil
}

// AssertRelationship runs the full pipeline: resolve the type (active only),
// resolve both concepts, run the validation engine, then allocate an id and
// write the relationship while updating both adjacency caches. The write and
// the adjacency updates happen in the same critical section. Every check runs
// before the id is allocated and the steps after allocation cannot fail, so a
// rejected assertion writes nothing, consumes no identifier, and adjacency
// symmetry always holds.
func (s *Store) AssertRelationship(
	ctx context.Context,
	from, to valueobjects.ConceptID,
	typeID valueobjects.TypeID,
	probability, confidence valueobjects.Fraction,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
) (valueobjects.RelationshipID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	relType, ok := s.types[typeID]
	if !ok {
		return 0, pkgerrors.NewNotFoundError("relationship type")
	}
	source, ok := s.concepts[from]
	if !ok {
		return 0, pkgerrors.NewNotFoundError("source concept")
	}
	target, ok := s.concepts[to]
	if !ok {
		return 0, pkgerrors.NewNotFoundError("target concept")
	}

	candidate := entities.NewRelationship(
		valueobjects.RelationshipID(s.nextRelationship),
		from, to, typeID, probability, confidence, metadata, creator,
	)
	if err := s.validator.Validate(candidate, relType, lockedLookup{s}); err != nil {
		return 0, err
	}

	id := candidate.ID()
	s.nextRelationship++
	s.relationships[id] = candidate
	s.relationshipOrder = append(s.relationshipOrder, id)
	source.AttachOutgoing(id)
	target.AttachIncoming(id)

	s.logger.Debug("relationship asserted",
		zap.Uint64("id", id.Uint64()),
		zap.Uint64("from", from.Uint64()),
		zap.Uint64("to", to.Uint64()),
		zap.Uint64("type", typeID.Uint64()),
		zap.String("probability", probability.String()),
		zap.String("confidence", confidence.String()),
	)
	return id, nil
}

// UpdateRelationship applies a patch, creator-only.
func (s *Store) UpdateRelationship(
	ctx context.Context,
	id valueobjects.RelationshipID,
	patch ports.RelationshipPatch,
	principal string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.relationships[id]
	if !ok {
		return pkgerrors.NewNotFoundError("relationship")
	}
	if rel.Creator().Principal != principal {
		return pkgerrors.NewPermissionDeniedError("modify", "relationship", "caller is not the creator")
	}

	changed := false
	if patch.Probability != nil {
		changed = rel.SetProbability(*patch.Probability) || changed
	}
	if patch.HasMetadata {
		changed = rel.SetMetadata(patch.Metadata) || changed
	}
	if !changed {
		return pkgerrors.NewInvalidOperationError("relationship update changes no fields")
	}
	return nil
}

// GetRelationship returns a deep snapshot.
func (s *Store) GetRelationship(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, ok := s.relationships[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}
	return rel.Clone(), nil
}

// QueryRelationships filters relationships by the AND-combined criteria,
// preserving insertion order.
func (s *Store) QueryRelationships(ctx context.Context, q ports.RelationshipQuery) ([]*entities.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*entities.Relationship
	for _, id := range s.relationshipOrder {
		rel := s.relationships[id]
		if !matchesRelationship(rel, q) {
			continue
		}
		results = append(results, rel.Clone())
	}
	return results, nil
}

// ConceptExists implements the inference graph view.
func (s *Store) ConceptExists(id valueobjects.ConceptID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.concepts[id]
	return ok
}

// RelationshipType implements the inference graph view.
func (s *Store) RelationshipType(id valueobjects.TypeID) (*entities.RelationshipType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	relType, ok := s.types[id]
	if !ok {
		return nil, false
	}
	return relType.Clone(), true
}

// OutgoingRelationships returns snapshots of the stored edges leaving a
// concept, in insertion order.
func (s *Store) OutgoingRelationships(id valueobjects.ConceptID) []*entities.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concept, ok := s.concepts[id]
	if !ok {
		return nil
	}
	outgoing := concept.Outgoing()
	results := make([]*entities.Relationship, 0, len(outgoing))
	for _, relID := range outgoing {
		rel, ok := s.relationships[relID]
		if !ok {
			// Adjacency out of sync with the relationship map is a
			// programmer bug, not user input.
			panic(fmt.Sprintf("adjacency cache references missing relationship %d", relID))
		}
		results = append(results, rel.Clone())
	}
	return results
}

// IncomingRelationships returns snapshots of the stored edges arriving at a
// concept, in insertion order.
func (s *Store) IncomingRelationships(id valueobjects.ConceptID) []*entities.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concept, ok := s.concepts[id]
	if !ok {
		return nil
	}
	incoming := concept.Incoming()
	results := make([]*entities.Relationship, 0, len(incoming))
	for _, relID := range incoming {
		rel, ok := s.relationships[relID]
		if !ok {
			panic(fmt.Sprintf("adjacency cache references missing relationship %d", relID))
		}
		results = append(results, rel.Clone())
	}
	return results
}

// lockedLookup exposes the uniqueness check to the validator while the writer
// lock is already held.
type lockedLookup struct {
	store *Store
}

func (l lockedLookup) HasRelationship(from, to valueobjects.ConceptID, typeID valueobjects.TypeID) bool {
	concept, ok := l.store.concepts[from]
	if !ok {
		return false
	}
	for _, relID := range concept.Outgoing() {
		rel := l.store.relationships[relID]
		if rel != nil && rel.To() == to && rel.TypeID() == typeID {
			return true
		}
	}
	return false
}

// activeTypeByName finds an active type by name. Caller holds the lock.
func (s *Store) activeTypeByName(name string) *entities.RelationshipType {
	for _, id := range s.typeOrder {
		relType := s.types[id]
		if !relType.IsDeprecated() && relType.Name() == name {
			return relType
		}
	}
	return nil
}

func matchesConcept(concept *entities.Concept, q ports.ConceptQuery) bool {
	if q.NameContains != nil && !strings.Contains(concept.Name(), *q.NameContains) {
		return false
	}
	if q.Creator != nil && concept.Creator().Principal != *q.Creator {
		return false
	}
	metadata := concept.Metadata()
	for _, pair := range q.Metadata {
		if !metadata.HasPair(pair.Key, pair.Value) {
			return false
		}
	}
	return true
}

func matchesRelationship(rel *entities.Relationship, q ports.RelationshipQuery) bool {
	if q.From != nil && rel.From() != *q.From {
		return false
	}
	if q.To != nil && rel.To() != *q.To {
		return false
	}
	if q.Type != nil && rel.TypeID() != *q.Type {
		return false
	}
	if q.Creator != nil && rel.Creator().Principal != *q.Creator {
		return false
	}
	if q.MinProbability != nil && rel.Probability().LessThan(*q.MinProbability) {
		return false
	}
	if q.MaxProbability != nil && !rel.Probability().AtMost(*q.MaxProbability) {
		return false
	}
	metadata := rel.Metadata()
	for _, pair := range q.Metadata {
		if !metadata.HasPair(pair.Key, pair.Value) {
			return false
		}
	}
	return true
}
