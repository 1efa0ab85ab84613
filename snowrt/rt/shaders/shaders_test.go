package shaders

import (
	"fmt"
	"testing"

	"github.com/gekko3d/snowfall"

	"github.com/stretchr/testify/assert"
)

func TestSimulateWGSL_WorkgroupSize(t *testing.T) {
	assert.Contains(t, SimulateWGSL, fmt.Sprintf("@workgroup_size(%d)", snowfall.WorkgroupSize))
}

func TestShadersEmbedded(t *testing.T) {
	for name, src := range map[string]string{
		"render":   RenderWGSL,
		"simulate": SimulateWGSL,
		"rect":     RectWGSL,
	} {
		assert.NotEmpty(t, src, name)
	}
}
