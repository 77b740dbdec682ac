package capacity

import "sort"

var standardWidthsMM = [...]float64{500, 650, 800, 1000, 1200, 1400, 1600, 1800, 2000}

// StandardWidths returns the standard belt width series in millimeters.
func StandardWidths() []float64 {
	return append([]float64(nil), standardWidthsMM[:]...)
}

// Selection is the outcome of SelectWidth.
type Selection struct {
	WidthMM float64        `json:"widthMm"`
	Result  CapacityResult `json:"result"`
	// Utilisation is target / capacity of the selected width.
	Utilisation float64 `json:"utilisation"`
	// Sufficient is false when even the widest candidate falls short; the
	// widest candidate is reported in that case.
	Sufficient bool `json:"sufficient"`
}

// SelectWidth picks the narrowest belt width whose capacity reaches
// targetTPH. An empty widths slice means StandardWidths.
func SelectWidth(targetTPH, troughDeg, surchargeDeg float64, m Material, widths []float64) Selection {
	if len(widths) == 0 {
		widths = StandardWidths()
	} else {
		widths = append([]float64(nil), widths...)
	}
	sort.Float64s(widths)

	var sel Selection
	for _, w := range widths {
		res := CapacityOf(Geometry{WidthMM: w, TroughDeg: troughDeg, SurchargeDeg: surchargeDeg}, m)
		sel = Selection{
			WidthMM:     w,
			Result:      res,
			Utilisation: utilisation(targetTPH, res.MassFlowTPH),
			Sufficient:  res.MassFlowTPH >= targetTPH,
		}
		if sel.Sufficient {
			break
		}
	}
	return sel
}

func utilisation(target, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return target / capacity
}
