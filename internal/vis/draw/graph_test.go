package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-reach/internal/vis/state"
)

func TestFindNodeAt(t *testing.T) {
	pos := map[core.Node]state.Pos{
		"a": {X: 0, Y: 0},
		"b": {X: 50, Y: 0},
	}
	cam := interact.NewCamera()

	n, ok := FindNodeAt(48, 3, pos, cam)
	assert.True(t, ok)
	assert.Equal(t, core.Node("b"), n)

	_, ok = FindNodeAt(25, 0, pos, cam)
	assert.False(t, ok)

	cam.ZoomBy(4, 0, 0)
	n, ok = FindNodeAt(25, 0, pos, cam)
	assert.True(t, ok)
	assert.Equal(t, core.Node("a"), n)
}
