// Package dce computes approximate distance-to-canopy-edge (DCE) rasters
// from a binary canopy/open mask.
//
// The core is an iterative edge-propagation algorithm. Two complementary
// frontiers — the canopy mask and its inverse — are repeatedly smoothed
// with a radius-1 kernel and rebinarized. Each pass grows a frontier
// outward by roughly one cell, an approximate morphological dilation, and
// every cell newly crossed by a frontier is frozen with the current step
// index. Because the detector runs on a grid resampled to 1-distance-unit
// cells, a cell's step index approximates its physical distance to the
// nearest canopy/open boundary.
//
// Three kernel configurations produce three outputs: a symmetric disk
// kernel for the non-directional signed distance, and two half-disk
// configurations that respond only to north- or south-facing edges, used
// to characterize asymmetric canopy-gap exposure.
//
// # Labels
//
// A label map cell is 0 while the frontier has not reached it, a positive
// step index once it has (write-once — labels never change after they are
// set), or -1 if the cell started on the opposite side of the boundary.
// Cells the frontier never reaches within the step budget stay 0 and
// surface as nodata in the composed output; that is an expected state, not
// an error, and callers tune the step budget to cover the largest gap they
// care about.
//
// The distances are dilation counts, not exact Euclidean distances.
package dce
