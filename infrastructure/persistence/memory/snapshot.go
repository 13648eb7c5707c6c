package memory

import (
	"fmt"

	"go.uber.org/zap"

	"conceptbase/application/ports"
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// Export flattens the three mappings into ordered (id, record) sequences plus
// the three counters.
func (s *Store) Export() *ports.SnapshotState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &ports.SnapshotState{
		Counters: ports.Counters{
			NextConcept:      s.nextConcept,
			NextRelationship: s.nextRelationship,
			NextType:         s.nextType,
		},
	}
	for _, id := range s.conceptOrder {
		c := s.concepts[id]
		state.Concepts = append(state.Concepts, ports.ConceptRecord{
			ID:          c.ID().Uint64(),
			Name:        c.Name(),
			Description: c.Description(),
			Metadata:    c.Metadata(),
			Creator:     c.Creator(),
			CreatedAt:   c.CreatedAt(),
			ModifiedAt:  c.ModifiedAt(),
		})
	}
	for _, id := range s.relationshipOrder {
		r := s.relationships[id]
		state.Relationships = append(state.Relationships, ports.RelationshipRecord{
			ID:          r.ID().Uint64(),
			From:        r.From().Uint64(),
			To:          r.To().Uint64(),
			Type:        r.TypeID().Uint64(),
			Probability: r.Probability(),
			Confidence:  r.Confidence(),
			Metadata:    r.Metadata(),
			Creator:     r.Creator(),
			CreatedAt:   r.CreatedAt(),
		})
	}
	for _, id := range s.typeOrder {
		t := s.types[id]
		state.Types = append(state.Types, ports.TypeRecord{
			ID:          t.ID().Uint64(),
			Name:        t.Name(),
			Description: t.Description(),
			Logical:     t.Logical(),
			Inheritance: t.Inheritance(),
			Rules:       t.Rules(),
			Status:      t.Status(),
			Metadata:    t.Metadata(),
			Creator:     t.Creator(),
			CreatedAt:   t.CreatedAt(),
		})
	}
	return state
}

// Restore rebuilds the mappings from a flattened image, discarding any
// current content. Adjacency caches are reconstructed from the relationship
// records, so a snapshot taken before a crash and one taken after a clean
// shutdown restore identically; restoring twice from the same snapshot is a
// no-op the second time.
func (s *Store) Restore(state *ports.SnapshotState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	concepts := make(map[valueobjects.ConceptID]*entities.Concept, len(state.Concepts))
	relationships := make(map[valueobjects.RelationshipID]*entities.Relationship, len(state.Relationships))
	types := make(map[valueobjects.TypeID]*entities.RelationshipType, len(state.Types))
	var conceptOrder []valueobjects.ConceptID
	var relationshipOrder []valueobjects.RelationshipID
	var typeOrder []valueobjects.TypeID

	for _, rec := range state.Types {
		id := valueobjects.TypeID(rec.ID)
		if _, dup := types[id]; dup {
			return pkgerrors.NewSystemError(fmt.Sprintf("snapshot contains duplicate type id %d", rec.ID), nil)
		}
		types[id] = entities.ReconstructRelationshipType(
			id, rec.Name, rec.Description, rec.Logical, rec.Inheritance,
			rec.Rules, rec.Status, rec.Metadata, rec.Creator, rec.CreatedAt,
		)
		typeOrder = append(typeOrder, id)
	}
	for _, rec := range state.Concepts {
		id := valueobjects.ConceptID(rec.ID)
		if _, dup := concepts[id]; dup {
			return pkgerrors.NewSystemError(fmt.Sprintf("snapshot contains duplicate concept id %d", rec.ID), nil)
		}
		concepts[id] = entities.ReconstructConcept(
			id, rec.Name, rec.Description, rec.Metadata, rec.Creator,
			rec.CreatedAt, rec.ModifiedAt,
		)
		conceptOrder = append(conceptOrder, id)
	}
	for _, rec := range state.Relationships {
		id := valueobjects.RelationshipID(rec.ID)
		if _, dup := relationships[id]; dup {
			return pkgerrors.NewSystemError(fmt.Sprintf("snapshot contains duplicate relationship id %d", rec.ID), nil)
		}
		source, ok := concepts[valueobjects.ConceptID(rec.From)]
		if !ok {
			return pkgerrors.NewSystemError(fmt.Sprintf("relationship %d references missing concept %d", rec.ID, rec.From), nil)
		}
		target, ok := concepts[valueobjects.ConceptID(rec.To)]
		if !ok {
			return pkgerrors.NewSystemError(fmt.Sprintf("relationship %d references missing concept %d", rec.ID, rec.To), nil)
		}
		if _, ok := types[valueobjects.TypeID(rec.Type)]; !ok {
			return pkgerrors.NewSystemError(fmt.Sprintf("relationship %d references missing type %d", rec.ID, rec.Type), nil)
		}
		rel := entities.ReconstructRelationship(
			id,
			valueobjects.ConceptID(rec.From),
			valueobjects.ConceptID(rec.To),
			valueobjects.TypeID(rec.Type),
			rec.Probability, rec.Confidence, rec.Metadata, rec.Creator, rec.CreatedAt,
		)
		relationships[id] = rel
		relationshipOrder = append(relationshipOrder, id)
		source.AttachOutgoing(id)
		target.AttachIncoming(id)
	}

	s.concepts = concepts
	s.relationships = relationships
	s.types = types
	s.conceptOrder = conceptOrder
	s.relationshipOrder = relationshipOrder
	s.typeOrder = typeOrder
	s.nextConcept = state.Counters.NextConcept
	s.nextRelationship = state.Counters.NextRelationship
	s.nextType = state.Counters.NextType

	s.logger.Info("store restored from snapshot",
		zap.Int("concepts", len(conceptOrder)),
		zap.Int("relationships", len(relationshipOrder)),
		zap.Int("types", len(typeOrder)),
	)
	return nil
}
