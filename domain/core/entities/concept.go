package entities

import (
	"time"

	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// Concept is a named node in the knowledge graph. The outgoing and incoming
// lists are adjacency caches maintained by the store: for every stored
// relationship r, r.ID appears exactly once in the source's outgoing list and
// once in the target's incoming list.
type Concept struct {
	id          valueobjects.ConceptID
	name        string
	description string
	metadata    valueobjects.Metadata
	outgoing    []valueobjects.RelationshipID
	incoming    []valueobjects.RelationshipID
	creator     valueobjects.Creator
	createdAt   time.Time
	modifiedAt  time.Time
}

// NewConcept creates a concept with a non-empty name.
func NewConcept(
	id valueobjects.ConceptID,
	name, description string,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
) (*Concept, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("EMPTY_NAME", "concept name cannot be empty")
	}
	now := time.Now().UTC()
	return &Concept{
		id:          id,
		name:        name,
		description: description,
		metadata:    metadata.Clone(),
		creator:     creator,
		createdAt:   now,
		modifiedAt:  now,
	}, nil
}

// ReconstructConcept rebuilds a concept from persisted data, preserving
// timestamps. Adjacency lists are rebuilt separately from the relationship
// records.
func ReconstructConcept(
	id valueobjects.ConceptID,
	name, description string,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
	createdAt, modifiedAt time.Time,
) *Concept {
	return &Concept{
		id:          id,
		name:        name,
		description: description,
		metadata:    metadata.Clone(),
		creator:     creator,
		createdAt:   createdAt,
		modifiedAt:  modifiedAt,
	}
}

// ID returns the concept identifier.
func (c *Concept) ID() valueobjects.ConceptID { return c.id }

// Name returns the concept name.
func (c *Concept) Name() string { return c.name }

// Description returns the optional description; empty means unset.
func (c *Concept) Description() string { return c.description }

// Metadata returns a copy of the ordered metadata.
func (c *Concept) Metadata() valueobjects.Metadata { return c.metadata.Clone() }

// Creator returns who created the concept.
func (c *Concept) Creator() valueobjects.Creator { return c.creator }

// CreatedAt returns the creation time.
func (c *Concept) CreatedAt() time.Time { return c.createdAt }

// ModifiedAt returns the last modification time.
func (c *Concept) ModifiedAt() time.Time { return c.modifiedAt }

// Outgoing returns a copy of the outgoing relationship ids in insertion order.
func (c *Concept) Outgoing() []valueobjects.RelationshipID {
	out := make([]valueobjects.RelationshipID, len(c.outgoing))
	copy(out, c.outgoing)
	return out
}

// Incoming returns a copy of the incoming relationship ids in insertion order.
func (c *Concept) Incoming() []valueobjects.RelationshipID {
	in := make([]valueobjects.RelationshipID, len(c.incoming))
	copy(in, c.incoming)
	return in
}

// Rename changes the concept name. Returns whether anything changed.
func (c *Concept) Rename(name string) (bool, error) {
	if name == "" {
		return false, pkgerrors.NewValidationError("EMPTY_NAME", "concept name cannot be empty")
	}
	if name == c.name {
		return false, nil
	}
	c.name = name
	c.touch()
	return true, nil
}

// SetDescription changes the description. Returns whether anything changed.
func (c *Concept) SetDescription(description string) bool {
	if description == c.description {
		return false
	}
	c.description = description
	c.touch()
	return true
}

// SetMetadata replaces the metadata. Returns whether anything changed.
func (c *Concept) SetMetadata(metadata valueobjects.Metadata) bool {
	if c.metadata.Equals(metadata) {
		return false
	}
	c.metadata = metadata.Clone()
	c.touch()
	return true
}

// AttachOutgoing appends a relationship id to the outgoing cache.
func (c *Concept) AttachOutgoing(id valueobjects.RelationshipID) {
	c.outgoing = append(c.outgoing, id)
}

// AttachIncoming appends a relationship id to the incoming cache.
func (c *Concept) AttachIncoming(id valueobjects.RelationshipID) {
	c.incoming = append(c.incoming, id)
}

// DetachOutgoing removes a relationship id from the outgoing cache. The store
// does not call it: a rejected assertion is never attached.
func (c *Concept) DetachOutgoing(id valueobjects.RelationshipID) {
	c.outgoing = removeID(c.outgoing, id)
}

// DetachIncoming removes a relationship id from the incoming cache.
func (c *Concept) DetachIncoming(id valueobjects.RelationshipID) {
	c.incoming = removeID(c.incoming, id)
}

// Clone returns a deep copy; callers of the store only ever see clones.
func (c *Concept) Clone() *Concept {
	out := &Concept{
		id:          c.id,
		name:        c.name,
		description: c.description,
		metadata:    c.metadata.Clone(),
		outgoing:    make([]valueobjects.RelationshipID, len(c.outgoing)),
		incoming:    make([]valueobjects.RelationshipID, len(c.incoming)),
		creator:     c.creator,
		createdAt:   c.createdAt,
		modifiedAt:  c.modifiedAt,
	}
	copy(out.outgoing, c.outgoing)
	copy(out.incoming, c.incoming)
	return out
}

func (c *Concept) touch() {
	c.modifiedAt = time.Now().UTC()
}

func removeID(ids []valueobjects.RelationshipID, id valueobjects.RelationshipID) []valueobjects.RelationshipID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
