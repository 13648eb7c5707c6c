package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataLookups(t *testing.T) {
	m := Metadata{
		{Key: "origin", Value: "import"},
		{Key: "source", Value: "user"},
	}

	value, ok := m.Get("origin")
	assert.True(t, ok)
	assert.Equal(t, "import", value)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	assert.True(t, m.Has("source"))
	assert.True(t, m.HasPair("source", "user"))
	assert.False(t, m.HasPair("source", "other"))
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	original := Metadata{{Key: "k", Value: "v"}}
	clone := original.Clone()
	clone[0].Value = "changed"

	assert.Equal(t, "v", original[0].Value)
	assert.Nil(t, Metadata(nil).Clone())
}

func TestMetadataEquals(t *testing.T) {
	a := Metadata{{Key: "k", Value: "v"}, {Key: "x", Value: "y"}}
	b := Metadata{{Key: "k", Value: "v"}, {Key: "x", Value: "y"}}
	reordered := Metadata{{Key: "x", Value: "y"}, {Key: "k", Value: "v"}}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(reordered))
	assert.False(t, a.Equals(a[:1]))
}
