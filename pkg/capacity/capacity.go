package capacity

const (
	minSpeedMPS    = 0.05
	minDensityTPM3 = 0.1

	// t/h = 60 * A[m²] * v[m/min] * rho[t/m³], with v given in m/s.
	secondsPerHour = 3600

	// Areas below this are considered degenerate.
	minAreaM2 = 1e-6

	minFallbackHeightM = 0.05
	fallbackFillFactor = 0.6
)

// Material is the conveyed bulk material and belt speed.
type Material struct {
	SpeedMPS    float64 `json:"speedMps"`
	DensityTPM3 float64 `json:"densityTpm3"`
}

// CapacityResult is the throughput together with the area it was computed
// from, which differs from the cross section when Fallback is set.
type CapacityResult struct {
	MassFlowTPH   float64 `json:"massFlowTph"`
	AreaM2        float64 `json:"areaM2"`
	VolumeFlowM3H float64 `json:"volumeFlowM3h"`
	Fallback      bool    `json:"fallback"`
}

// Capacity computes the mass flow of a belt in t/h.
func Capacity(widthMM, troughDeg, surchargeDeg, speedMPS, densityTPM3 float64) CapacityResult {
	g := Geometry{WidthMM: widthMM, TroughDeg: troughDeg, SurchargeDeg: surchargeDeg}
	return CapacityOf(g, Material{SpeedMPS: speedMPS, DensityTPM3: densityTPM3})
}

// CapacityOf is Capacity over structured inputs.
func CapacityOf(g Geometry, m Material) CapacityResult {
	return capacityFrom(CrossSectionOf(g), g.SurchargeDeg, m)
}

func capacityFrom(cs CrossSection, surchargeDeg float64, m Material) CapacityResult {
	v := atLeast(minSpeedMPS, m.SpeedMPS)
	rho := atLeast(minDensityTPM3, m.DensityTPM3)

	a := cs.AreaM2
	fallback := false
	if a < minAreaM2 {
		height := atLeast(minFallbackHeightM, surchargeDeg/100)
		a = cs.WidthM * height * fallbackFillFactor
		fallback = true
	}

	volume := secondsPerHour * a * v
	return CapacityResult{
		MassFlowTPH:   volume * rho,
		AreaM2:        a,
		VolumeFlowM3H: volume,
		Fallback:      fallback,
	}
}
