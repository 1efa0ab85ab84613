package shaders

import (
	_ "embed"
)

//go:embed render.wgsl
var RenderWGSL string

//go:embed simulate.wgsl
var SimulateWGSL string

//go:embed rect.wgsl
var RectWGSL string
