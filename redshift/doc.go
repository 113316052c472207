// Package redshift measures the redshift of a spectrum by cross-correlating
// it against template spectra over a grid of trial redshifts.
//
// An Engine scores one template against one target over a Grid. A Searcher
// runs the engine for every template of a catalog in caller order and
// selects the overall best (template, redshift) pair.
//
// Scores are Pearson-normalized correlations of the overlapping segments
// and lie in [-1, 1]. Trials with too little overlap score NoCorrelation.
package redshift
