package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIsMonotonic(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	g := NewGenerator(func() time.Time { return fixed })

	prev := g.New()
	for i := 0; i < 100; i++ {
		next := g.New()
		assert.Less(t, prev, next)
		prev = next
	}
}
