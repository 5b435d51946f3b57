// Package indicator provides technical indicator calculations over float series.
//
// Every indicator exposes three operations:
//
//	XxxLookback(params) (int, error)            // leading positions that stay NaN
//	Calc[F].Xxx(inputs..., params, outputs...)  // batch evaluation, returns the final state
//	XxxNext(sample..., state, params)           // one incremental step, returns the new state
//
// The batch evaluator and the incremental evaluator share the same step
// function, so feeding the state returned by a batch call into XxxNext for
// each following sample reproduces what a batch call over the longer series
// would have written.
//
// States are plain values. XxxNext never mutates the state it receives;
// the caller keeps whatever history the step asks for (the evicted sample of
// a window, or a short window slice whose last element is the new sample).
//
// The package performs no I/O, no logging and keeps no global mutable state.
package indicator
