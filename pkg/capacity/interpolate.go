package capacity

import "sort"

// Curve maps integer breakpoints to values.
type Curve map[int]float64

// Keys returns the breakpoints in ascending order.
func (c Curve) Keys() []int {
	keys := make([]int, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (c Curve) clone() Curve {
	out := make(Curve, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Interpolate evaluates c at x. Outside the breakpoint range the nearest end
// value is returned; inside it the two bracketing breakpoints are joined
// linearly. An empty curve evaluates to 0.
func Interpolate(x float64, c Curve) float64 {
	if len(c) == 0 {
		return 0
	}

	keys := c.Keys()
	first, last := keys[0], keys[len(keys)-1]
	if x <= float64(first) {
		return c[first]
	}
	if x >= float64(last) {
		return c[last]
	}

	// Exact hits return the stored value untouched.
	if k := int(x); float64(k) == x {
		if v, ok := c[k]; ok {
			return v
		}
	}

	for i := 0; i < len(keys)-1; i++ {
		x0, x1 := float64(keys[i]), float64(keys[i+1])
		if x0 <= x && x <= x1 {
			y0, y1 := c[keys[i]], c[keys[i+1]]
			return y0 + (y1-y0)*(x-x0)/(x1-x0)
		}
	}

	// Only reachable for NaN.
	return c[keys[len(keys)/2]]
}
