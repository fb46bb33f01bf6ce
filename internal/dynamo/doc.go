// Package dynamo provides the primitives shared across plife's layers.
//
//   - sentinel errors for configuration, GPU and lifecycle failures
//   - [ParallelFor]: chunked fan-out used by the force pass
//
// Errors are wrapped with context at the point of failure and matched with
// errors.Is by callers:
//
//	if errors.Is(err, dynamo.ErrInvalidConfig) {
//	    // reject and keep the previous simulation
//	}
package dynamo
