package render

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/san-kum/plife/internal/dynamo"
)

var (
	//go:embed shaders/particle.vert
	vertexSource string

	//go:embed shaders/particle.frag
	fragmentSource string
)

// Uniform names looked up after linking. Every one must be active.
const (
	uniformResolution = "uResolution"
	uniformCamera     = "uCamera"
	uniformZoom       = "uZoom"
	uniformPointScale = "uPointScale"
)

// Attribute locations fixed by the vertex shader's layout qualifiers.
const (
	attribPosition uint32 = 0
	attribColor    uint32 = 1
	attribSize     uint32 = 2
)

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", dynamo.ErrShaderCompile, shaderKind(kind), trimLog(log))
	}
	return shader, nil
}

// linkProgram builds the particle program. Shaders are always deleted; the
// program is deleted too when linking fails.
func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", dynamo.ErrProgramLink, trimLog(log))
	}

	gl.DetachShader(program, vert)
	gl.DetachShader(program, frag)
	return program, nil
}

func uniformLocation(program uint32, name string) (int32, error) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%w: %s", dynamo.ErrUniform, name)
	}
	return loc, nil
}

func shaderKind(kind uint32) string {
	switch kind {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	}
	return fmt.Sprintf("0x%x", kind)
}

func trimLog(log string) string {
	return strings.TrimSpace(strings.TrimRight(log, "\x00"))
}
