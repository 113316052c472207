// Package buffer pools the float64 scratch slices used while scoring
// trial redshifts, so that a long grid does not allocate per trial.
package buffer
