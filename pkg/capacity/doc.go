// Package capacity computes the loaded cross section and throughput of a
// troughed or flat belt conveyor. It provides:
//
//   - AngleLabel / ParseAngle: turn dropdown labels into degrees
//   - Interpolate: 1D clamped linear interpolation over a Curve
//   - KFactor / CrossSectionOf: shape factor and cross-sectional area
//   - Capacity / CapacityOf: volumetric and mass flow
//   - SelectWidth: narrowest standard belt width for a target throughput
//
// Every function is total. Unusable input degrades to a default or a
// fallback value instead of an error, so callers can recalculate on every
// keystroke. Inputs near the float64 limit can still overflow to +Inf.
//
// The shape factor table is read-only and safe for concurrent use. Apart
// from its (20°, 20°) anchor the coefficients are estimates, not published
// values, so results are for preliminary comparison only.
package capacity
