package capacity

import (
	"github.com/sirupsen/logrus"
)

// Engine wraps the calculations with optional step-by-step trace events.
// Tracing only logs; results are identical to the package functions. An
// Engine is not modified after NewEngine returns and may be shared.
type Engine struct {
	log          logrus.FieldLogger
	trace        bool
	defaultAngle float64
}

type Option func(*Engine)

// WithLogger sets where trace events go.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTrace turns trace events on or off.
func WithTrace(on bool) Option {
	return func(e *Engine) {
		e.trace = on
	}
}

// WithDefaultAngle sets the angle substituted for unusable labels.
func WithDefaultAngle(deg float64) Option {
	return func(e *Engine) {
		e.defaultAngle = deg
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:          logrus.StandardLogger(),
		defaultAngle: DefaultAngle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) DefaultAngle() float64 {
	return e.defaultAngle
}

func (e *Engine) Traced() bool {
	return e.trace
}

// ParseAngle resolves label to degrees. recognised is false when the
// engine's default angle was substituted.
func (e *Engine) ParseAngle(label AngleLabel) (deg float64, recognised bool) {
	deg, recognised = LookupAngle(label)
	if !recognised {
		deg = e.defaultAngle
	}
	e.traceEvent(logrus.Fields{
		"label":      label.String(),
		"degrees":    deg,
		"recognised": recognised,
	}, "angle label parsed")
	return deg, recognised
}

func (e *Engine) KFactor(troughDeg, surchargeDeg float64) float64 {
	k := KFactor(troughDeg, surchargeDeg)
	e.traceEvent(logrus.Fields{
		"trough":    troughDeg,
		"surcharge": surchargeDeg,
		"flat":      IsFlat(troughDeg),
		"k":         k,
	}, "shape factor interpolated")
	return k
}

func (e *Engine) CrossSection(g Geometry) CrossSection {
	cs := CrossSectionOf(g)
	e.traceEvent(logrus.Fields{
		"widthMm":         g.WidthMM,
		"widthM":          cs.WidthM,
		"trough":          g.TroughDeg,
		"surcharge":       g.SurchargeDeg,
		"k":               cs.K,
		"effectiveWidthM": cs.EffectiveWidthM,
		"flat":            cs.Flat,
		"areaM2":          cs.AreaM2,
	}, "cross section computed")
	return cs
}

func (e *Engine) Capacity(g Geometry, m Material) CapacityResult {
	_, res := e.Evaluate(g, m)
	return res
}

// Evaluate returns the cross section together with the capacity derived
// from it.
func (e *Engine) Evaluate(g Geometry, m Material) (CrossSection, CapacityResult) {
	cs := e.CrossSection(g)
	res := capacityFrom(cs, g.SurchargeDeg, m)
	e.traceEvent(logrus.Fields{
		"speedMps":      m.SpeedMPS,
		"densityTpm3":   m.DensityTPM3,
		"areaM2":        res.AreaM2,
		"fallback":      res.Fallback,
		"volumeFlowM3h": res.VolumeFlowM3H,
		"massFlowTph":   res.MassFlowTPH,
	}, "capacity computed")
	return cs, res
}

func (e *Engine) SelectWidth(targetTPH, troughDeg, surchargeDeg float64, m Material, widths []float64) Selection {
	sel := SelectWidth(targetTPH, troughDeg, surchargeDeg, m, widths)
	e.traceEvent(logrus.Fields{
		"targetTph":   targetTPH,
		"widthMm":     sel.WidthMM,
		"massFlowTph": sel.Result.MassFlowTPH,
		"utilisation": sel.Utilisation,
		"sufficient":  sel.Sufficient,
	}, "belt width selected")
	return sel
}

func (e *Engine) traceEvent(fields logrus.Fields, msg string) {
	if !e.trace {
		return
	}
	e.log.WithFields(fields).Debug(msg)
}
