// Package sim implements the particle-life engine.
//
// An [Engine] owns a structure-of-arrays particle set and a [Matrix] of
// asymmetric color interaction coefficients. Each [Engine.Tick] resets the
// force accumulators, evaluates [Force] for every pair closer than the
// sensing radius, integrates velocity with damping and a speed cap, and wraps
// positions onto the toroidal world centered at the origin.
//
// # Neighbor search
//
// The reference pass is a brute-force O(N²) loop over unordered pairs. The
// [NeighborsGrid] strategy buckets particles into cells at least one sensing
// radius wide and yields the same pairs; it only changes summation order.
//
//	eng, err := sim.New(sim.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	eng.Tick(1.0 / 60)
//	frame := eng.Frame()
//
// # Thread Safety
//
// Engine is single-threaded. Workers > 1 fans the force gather out internally
// but Tick does not return until every worker has finished.
package sim
