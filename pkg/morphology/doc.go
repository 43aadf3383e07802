// Package morphology implements marginal RGB erosion and dilation.
//
// A StructuringElement selects the neighbourhood, a Sampler reads the
// source with a black background outside the image, and a Kernel reduces
// each channel independently to its minimum (erosion) or maximum
// (dilation). Sequential and Parallel apply the same Kernel to every
// pixel; Parallel splits the rows into one contiguous band per worker and
// produces exactly the same raster as Sequential.
package morphology
