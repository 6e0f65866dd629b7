package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

type noop struct{}

func (noop) Up(context.Context, *mongo.Database) error   { return nil }
func (noop) Down(context.Context, *mongo.Database) error { return nil }

func TestPendingSkipsAppliedAndSortsByName(t *testing.T) {
	all := []registered{
		{name: "20260102_b", m: noop{}},
		{name: "20260101_a", m: noop{}},
		{name: "20260103_c", m: noop{}},
	}

	got := pending(all, map[string]bool{"20260102_b": true})
	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.name
	}
	assert.Equal(t, []string{"20260101_a", "20260103_c"}, names)

	assert.Empty(t, pending(all, map[string]bool{"20260101_a": true, "20260102_b": true, "20260103_c": true}))
}
