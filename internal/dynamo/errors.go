package dynamo

import "errors"

// Domain errors shared by the simulation, rendering and host layers.
var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrRuleIndex indicates a color index outside [0, colorCount).
	ErrRuleIndex = errors.New("dynamo: rule index out of range")

	// ErrNoContext indicates the window or graphics context could not be created.
	ErrNoContext = errors.New("dynamo: graphics context unavailable")

	// ErrShaderCompile indicates a shader stage failed to compile.
	ErrShaderCompile = errors.New("dynamo: shader compilation failed")

	// ErrProgramLink indicates the shader program failed to link.
	ErrProgramLink = errors.New("dynamo: program link failed")

	// ErrUniform indicates a required uniform is missing from the linked program.
	ErrUniform = errors.New("dynamo: uniform not found")

	// ErrContextLost indicates the graphics context was lost while rendering.
	ErrContextLost = errors.New("dynamo: graphics context lost")

	// ErrDisposed indicates use of a resource after Dispose.
	ErrDisposed = errors.New("dynamo: resource disposed")

	// ErrStopped indicates the frame loop has stopped after a fatal render error.
	ErrStopped = errors.New("dynamo: frame loop stopped")
)
