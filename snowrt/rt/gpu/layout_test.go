package gpu

import (
	"testing"

	"github.com/gekko3d/snowfall/snowrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayout_Particle(t *testing.T) {
	l := vertexLayout(core.Particle{}, wgpu.VertexStepModeInstance)
	assert.Equal(t, uint64(core.ParticleBytes), l.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, l.StepMode)
	require.Equal(t, []wgpu.VertexAttribute{
		{ShaderLocation: 10, Offset: 0, Format: wgpu.VertexFormatFloat32x2},
		{ShaderLocation: 11, Offset: 8, Format: wgpu.VertexFormatFloat32x2},
		{ShaderLocation: 12, Offset: 16, Format: wgpu.VertexFormatFloat32},
		{ShaderLocation: 13, Offset: 20, Format: wgpu.VertexFormatFloat32},
	}, l.Attributes)
}

func TestVertexLayout_QuadAndRect(t *testing.T) {
	quad := vertexLayout(core.QuadVertex{}, wgpu.VertexStepModeVertex)
	assert.Equal(t, uint64(8), quad.ArrayStride)
	require.Len(t, quad.Attributes, 1)
	assert.Equal(t, uint32(0), quad.Attributes[0].ShaderLocation)

	rect := vertexLayout(core.RectInstance{}, wgpu.VertexStepModeInstance)
	assert.Equal(t, uint64(16), rect.ArrayStride)
	require.Len(t, rect.Attributes, 2)
	assert.Equal(t, uint32(10), rect.Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(11), rect.Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(8), rect.Attributes[1].Offset)
}

func TestVertexLayout_BadInput(t *testing.T) {
	assert.Panics(t, func() { vertexLayout(42, wgpu.VertexStepModeVertex) })
	assert.Panics(t, func() {
		vertexLayout(struct {
			V [3]int32 `location:"0" format:"int3"`
		}{}, wgpu.VertexStepModeVertex)
	})
}
