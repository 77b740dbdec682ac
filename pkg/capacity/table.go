package capacity

// Shape factor table. Only the troughed (20°, 20°) entry, 0.1245, is taken
// from published reference data. Every other cell is an estimate filled in
// to be monotone in both angles around that anchor, so results are suitable
// for preliminary comparisons only. Check the manufacturer's capacity tables
// before sizing a real conveyor.
var (
	surchargeBreakpoints = [3]int{10, 20, 30}
	troughBreakpoints    = [8]int{10, 15, 20, 25, 30, 35, 40, 45}
)

// flatK is indexed by surcharge breakpoint.
var flatK = [3]float64{0.0295, 0.0591, 0.0906}

// troughedK is indexed by [trough breakpoint][surcharge breakpoint] for
// three-roll idler sets.
var troughedK = [8][3]float64{
	{0.0689, 0.0919, 0.1152}, // 10°
	{0.0827, 0.1083, 0.1314}, // 15°
	{0.0970, 0.1245, 0.1480}, // 20°
	{0.1095, 0.1374, 0.1608}, // 25°
	{0.1203, 0.1486, 0.1715}, // 30°
	{0.1296, 0.1578, 0.1802}, // 35°
	{0.1373, 0.1650, 0.1866}, // 40°
	{0.1433, 0.1703, 0.1908}, // 45°
}

// Built once at package init and only ever read afterwards.
var (
	flatCurve      = surchargeCurve(flatK)
	troughedCurves = buildTroughedCurves()
)

// Table is a copy of the reference coefficients, for display and reports.
type Table struct {
	Flat     Curve         `json:"flat"`
	Troughed map[int]Curve `json:"troughed"`
}

// Coefficients returns a deep copy of the reference table. Changing the copy
// has no effect on calculations.
func Coefficients() Table {
	t := Table{
		Flat:     flatCurve.clone(),
		Troughed: make(map[int]Curve, len(troughedCurves)),
	}
	for trough, inner := range troughedCurves {
		t.Troughed[trough] = inner.clone()
	}
	return t
}

// SurchargeBreakpoints returns the surcharge angles the table is keyed on.
func SurchargeBreakpoints() []int {
	return append([]int(nil), surchargeBreakpoints[:]...)
}

// TroughBreakpoints returns the trough angles the troughed table is keyed on.
func TroughBreakpoints() []int {
	return append([]int(nil), troughBreakpoints[:]...)
}

func surchargeCurve(row [3]float64) Curve {
	c := make(Curve, len(row))
	for i, s := range surchargeBreakpoints {
		c[s] = row[i]
	}
	return c
}

func buildTroughedCurves() map[int]Curve {
	m := make(map[int]Curve, len(troughBreakpoints))
	for i, t := range troughBreakpoints {
		m[t] = surchargeCurve(troughedK[i])
	}
	return m
}
