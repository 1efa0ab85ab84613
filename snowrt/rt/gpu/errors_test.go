package gpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySurfaceError(t *testing.T) {
	cases := []struct {
		msg  string
		want SurfaceErrorKind
	}{
		{"surface texture status: OutOfMemory", SurfaceOutOfMemory},
		{"out of memory", SurfaceOutOfMemory},
		{"GetCurrentTexture: Outdated", SurfaceOutdated},
		{"surface Lost", SurfaceLost},
		{"DeviceLost", SurfaceLost},
		{"Timeout", SurfaceTimeout},
		{"something else", SurfaceOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifySurfaceError(errors.New(tc.msg)), tc.msg)
	}
	assert.Equal(t, SurfaceOther, classifySurfaceError(nil))
}

func TestIsOutOfMemory(t *testing.T) {
	oom := newSurfaceError("display-0", errors.New("OutOfMemory"))
	assert.True(t, IsOutOfMemory(oom))
	assert.True(t, IsOutOfMemory(fmt.Errorf("render: %w", oom)))

	assert.False(t, IsOutOfMemory(newSurfaceError("display-0", errors.New("Timeout"))))
	assert.False(t, IsOutOfMemory(errors.New("OutOfMemory")), "plain errors are not surface errors")
	assert.False(t, IsOutOfMemory(nil))
}

func TestBuildError(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("init: %w", &BuildError{Display: "display-1", Stage: StagePipeline, Err: cause})

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, StagePipeline, be.Stage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "build pipeline for display-1: boom", be.Error())
	assert.Equal(t, "build adapter: boom", (&BuildError{Stage: StageAdapter, Err: cause}).Error())
}

func TestPickSurfaceFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, pickSurfaceFormat([]wgpu.TextureFormat{
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb,
	}))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, pickSurfaceFormat([]wgpu.TextureFormat{
		wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm,
	}))
}
