package capacity

const (
	// Below this trough angle the belt is treated as flat.
	flatTroughLimit = 5.0

	// No conveyor narrower than this is modeled.
	minWidthM = 0.3

	// Troughed belts: effective width 0.9B - 0.05.
	troughedWidthFactor = 0.9
	troughedEdgeM       = 0.05

	// Flat belts: effective width 0.8B, never below 0.1 m.
	flatWidthFactor = 0.8
	minFlatWidthM   = 0.1
)

// Geometry describes the belt. Width is in millimeters, angles in degrees.
type Geometry struct {
	WidthMM      float64 `json:"widthMm"`
	TroughDeg    float64 `json:"troughDeg"`
	SurchargeDeg float64 `json:"surchargeDeg"`
}

// CrossSection is the material cross section together with the terms it was
// derived from.
type CrossSection struct {
	AreaM2          float64 `json:"areaM2"`
	K               float64 `json:"k"`
	EffectiveWidthM float64 `json:"effectiveWidthM"`
	WidthM          float64 `json:"widthM"`
	Flat            bool    `json:"flat"`
}

// IsFlat reports whether troughDeg selects the flat belt table.
func IsFlat(troughDeg float64) bool {
	return troughDeg < flatTroughLimit
}

// WidthMeters converts a belt width to meters, applying the 0.3 m floor.
func WidthMeters(widthMM float64) float64 {
	return atLeast(minWidthM, widthMM/1000)
}

// KFactor looks up the shape factor. Troughed belts are interpolated over
// surcharge for every trough breakpoint first and then over trough.
func KFactor(troughDeg, surchargeDeg float64) float64 {
	if IsFlat(troughDeg) {
		return Interpolate(surchargeDeg, flatCurve)
	}

	byTrough := make(Curve, len(troughedCurves))
	for trough, inner := range troughedCurves {
		byTrough[trough] = Interpolate(surchargeDeg, inner)
	}
	return Interpolate(troughDeg, byTrough)
}

// CrossSectionOf computes the loaded cross section of g.
func CrossSectionOf(g Geometry) CrossSection {
	b := WidthMeters(g.WidthMM)
	k := KFactor(g.TroughDeg, g.SurchargeDeg)
	flat := IsFlat(g.TroughDeg)

	var ew float64
	if flat {
		ew = atLeast(minFlatWidthM, flatWidthFactor*b)
	} else {
		ew = atLeast(0, troughedWidthFactor*b-troughedEdgeM)
	}

	return CrossSection{
		AreaM2:          k * ew * ew,
		K:               k,
		EffectiveWidthM: ew,
		WidthM:          b,
		Flat:            flat,
	}
}

// Area returns the cross-sectional area in m².
func Area(widthMM, troughDeg, surchargeDeg float64) float64 {
	return CrossSectionOf(Geometry{
		WidthMM:      widthMM,
		TroughDeg:    troughDeg,
		SurchargeDeg: surchargeDeg,
	}).AreaM2
}

// atLeast is max(floor, v) with NaN treated as below the floor.
func atLeast(floor, v float64) float64 {
	if v >= floor {
		return v
	}
	return floor
}
