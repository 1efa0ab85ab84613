package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWriter is the part of *wgpu.Queue that uploads host bytes.
type BufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

// Uniform mirrors a host value of a fixed-layout type into a GPU uniform
// buffer. Data may be mutated freely; the GPU copy only matches it right
// after Write.
type Uniform[T any] struct {
	Data T

	buffer *wgpu.Buffer
	size   uint64
}

func NewUniform[T any](device *wgpu.Device, data T, label string) (*Uniform[T], error) {
	u := newHostUniform(data)
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: u.Bytes(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	u.buffer = buf
	return u, nil
}

// newHostUniform builds a uniform with no GPU buffer behind it yet.
func newHostUniform[T any](data T) *Uniform[T] {
	u := &Uniform[T]{Data: data}
	u.size = uint64(len(u.Bytes()))
	return u
}

// Bytes is the packed GPU image of Data.
func (u *Uniform[T]) Bytes() []byte { return packBytes(u.Data) }

func (u *Uniform[T]) Size() uint64 { return u.size }

func (u *Uniform[T]) Buffer() *wgpu.Buffer { return u.buffer }

// Write uploads the current host value.
func (u *Uniform[T]) Write(w BufferWriter) error {
	return w.WriteBuffer(u.buffer, 0, u.Bytes())
}

// BindingLayout describes the uniform for a bind group layout entry.
func (u *Uniform[T]) BindingLayout() wgpu.BufferBindingLayout {
	return wgpu.BufferBindingLayout{
		Type:             wgpu.BufferBindingTypeUniform,
		HasDynamicOffset: false,
		MinBindingSize:   u.size,
	}
}

func (u *Uniform[T]) Release() {
	if u.buffer != nil {
		u.buffer.Release()
		u.buffer = nil
	}
}
