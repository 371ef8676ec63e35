package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7GeneratorProducesSortableIDs(t *testing.T) {
	g := UUIDv7Generator{}

	a := g.Generate()
	b := g.Generate()

	ua, err := uuid.Parse(a)
	require.NoError(t, err)
	ub, err := uuid.Parse(b)
	require.NoError(t, err)

	assert.Equal(t, uuid.Version(7), ua.Version())
	assert.Equal(t, uuid.Version(7), ub.Version())

	// UUIDv7 is time-ordered; sequential generation sorts lexically.
	assert.Less(t, a, b)
}

func TestFixedGeneratorReturnsInOrder(t *testing.T) {
	g := NewFixedGenerator("one", "two")

	assert.Equal(t, "one", g.Generate())
	assert.Equal(t, "two", g.Generate())
}

func TestFixedGeneratorPanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	g.Generate()

	assert.Panics(t, func() { g.Generate() })
}
