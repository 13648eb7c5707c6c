package handlers

import (
	"strings"
	"time"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
)

// The view types are the wire shapes of the domain entities. Fractions render
// in their exact "n/d" form.

// ConceptView is the wire shape of a concept.
type ConceptView struct {
	ID          uint64                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Metadata    valueobjects.Metadata `json:"metadata,omitempty"`
	Outgoing    []uint64              `json:"outgoing"`
	Incoming    []uint64              `json:"incoming"`
	Creator     valueobjects.Creator  `json:"creator"`
	CreatedAt   time.Time             `json:"created_at"`
	ModifiedAt  time.Time             `json:"modified_at"`
}

// NewConceptView converts a concept snapshot.
func NewConceptView(c *entities.Concept) ConceptView {
	return ConceptView{
		ID:          c.ID().Uint64(),
		Name:        c.Name(),
		Description: c.Description(),
		Metadata:    c.Metadata(),
		Outgoing:    relationshipIDs(c.Outgoing()),
		Incoming:    relationshipIDs(c.Incoming()),
		Creator:     c.Creator(),
		CreatedAt:   c.CreatedAt(),
		ModifiedAt:  c.ModifiedAt(),
	}
}

// RelationshipView is the wire shape of a relationship.
type RelationshipView struct {
	ID          uint64                `json:"id"`
	From        uint64                `json:"from"`
	To          uint64                `json:"to"`
	Type        uint64                `json:"type"`
	Probability valueobjects.Fraction `json:"probability"`
	Confidence  valueobjects.Fraction `json:"confidence"`
	Metadata    valueobjects.Metadata `json:"metadata,omitempty"`
	Creator     valueobjects.Creator  `json:"creator"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewRelationshipView converts a relationship snapshot.
func NewRelationshipView(r *entities.Relationship) RelationshipView {
	return RelationshipView{
		ID:          r.ID().Uint64(),
		From:        r.From().Uint64(),
		To:          r.To().Uint64(),
		Type:        r.TypeID().Uint64(),
		Probability: r.Probability(),
		Confidence:  r.Confidence(),
		Metadata:    r.Metadata(),
		Creator:     r.Creator(),
		CreatedAt:   r.CreatedAt(),
	}
}

// RelationshipTypeView is the wire shape of a relationship type.
type RelationshipTypeView struct {
	ID          uint64                         `json:"id"`
	Name        string                         `json:"name"`
	Description string                         `json:"description,omitempty"`
	Logical     entities.LogicalProperties     `json:"logical"`
	Inheritance entities.InheritanceProperties `json:"inheritance"`
	Rules       []entities.ValidationRule      `json:"rules,omitempty"`
	Status      entities.TypeStatus            `json:"status"`
	Metadata    valueobjects.Metadata          `json:"metadata,omitempty"`
	Creator     valueobjects.Creator           `json:"creator"`
	CreatedAt   time.Time                      `json:"created_at"`
}

// NewRelationshipTypeView converts a relationship type snapshot.
func NewRelationshipTypeView(t *entities.RelationshipType) RelationshipTypeView {
	return RelationshipTypeView{
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
	}
}

// metadataFromParams parses repeated "key:value" query parameters into an
// ordered metadata filter.
func metadataFromParams(params []string) valueobjects.Metadata {
	var out valueobjects.Metadata
	for _, raw := range params {
		key, value, found := strings.Cut(raw, ":")
		if !found || key == "" {
			continue
		}
		out = append(out, valueobjects.MetadataEntry{Key: key, Value: value})
	}
	return out
}

func relationshipIDs(ids []valueobjects.RelationshipID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = id.Uint64()
	}
	return out
}
