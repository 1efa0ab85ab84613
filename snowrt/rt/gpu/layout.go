package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
)

// packBytes serializes v field by field, little endian, with no implicit
// padding. Structs mirrored to WGSL must therefore spell out their padding.
func packBytes(v any) []byte {
	buf := new(bytes.Buffer)
	writeFieldBytes(reflect.ValueOf(v), buf)
	return buf.Bytes()
}

func writeFieldBytes(field reflect.Value, buf *bytes.Buffer) {
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			writeFieldBytes(field.Index(i), buf)
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			writeFieldBytes(field.Field(i), buf)
		}

	case reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			panic(fmt.Errorf("failed to write scalar field: %w", err))
		}

	default:
		panic(fmt.Errorf("unsupported GPU field kind %s", field.Kind()))
	}
}

func parseFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float":
		return wgpu.VertexFormatFloat32
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

// vertexLayout builds a buffer layout from `location` and `format` struct
// tags. Untagged fields still occupy their bytes in the stride.
func vertexLayout(sample any, step wgpu.VertexStepMode) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(sample)
	if t.Kind() != reflect.Struct {
		panic("vertex layout source must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		loc, ok := field.Tag.Lookup("location")
		if !ok {
			continue
		}
		location, err := strconv.Atoi(loc)
		if err != nil {
			panic(err)
		}
		attributes = append(attributes, wgpu.VertexAttribute{
			ShaderLocation: uint32(location),
			Offset:         uint64(field.Offset),
			Format:         parseFormat(field.Tag.Get("format")),
		})
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(t.Size()),
		StepMode:    step,
		Attributes:  attributes,
	}
}
