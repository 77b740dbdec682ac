package capacity

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestEngineTraceDoesNotChangeResults(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	traced := NewEngine(WithLogger(logger), WithTrace(true))
	quiet := NewEngine(WithLogger(logger))

	g := Geometry{WidthMM: 1200, TroughDeg: 35, SurchargeDeg: 25}
	m := Material{SpeedMPS: 3.15, DensityTPM3: 0.9}

	if traced.Capacity(g, m) != quiet.Capacity(g, m) {
		t.Errorf("tracing changed the capacity result")
	}
	if traced.Capacity(g, m) != CapacityOf(g, m) {
		t.Errorf("engine result differs from package function")
	}

	// quiet emits nothing; traced emits cross section + capacity per call.
	if got := len(hook.AllEntries()); got != 4 {
		t.Errorf("got %d trace entries, want 4", got)
	}
	last := hook.LastEntry()
	if last.Message != "capacity computed" {
		t.Errorf("last entry = %q", last.Message)
	}
	if _, ok := last.Data["massFlowTph"]; !ok {
		t.Errorf("capacity trace is missing massFlowTph: %v", last.Data)
	}
}

func TestEngineParseAngle(t *testing.T) {
	tests := []struct {
		name           string
		engine         *Engine
		label          AngleLabel
		wantDeg        float64
		wantRecognised bool
	}{
		{name: "recognised", engine: NewEngine(), label: LabelText("35°"), wantDeg: 35, wantRecognised: true},
		{name: "default", engine: NewEngine(), label: LabelText("?"), wantDeg: DefaultAngle},
		{name: "custom default", engine: NewEngine(WithDefaultAngle(30)), label: LabelText(""), wantDeg: 30},
		{name: "numeric", engine: NewEngine(WithDefaultAngle(30)), label: LabelDegrees(12), wantDeg: 12, wantRecognised: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deg, ok := tt.engine.ParseAngle(tt.label)
			if deg != tt.wantDeg || ok != tt.wantRecognised {
				t.Errorf("ParseAngle(%v) = %v, %v, want %v, %v", tt.label, deg, ok, tt.wantDeg, tt.wantRecognised)
			}
		})
	}
}

func TestSelectWidth(t *testing.T) {
	m := Material{SpeedMPS: 2.0, DensityTPM3: 1.6}
	tests := []struct {
		name           string
		target         float64
		widths         []float64
		wantWidth      float64
		wantSufficient bool
	}{
		{name: "small target takes narrowest", target: 10, wantWidth: 500, wantSufficient: true},
		{name: "reference width", target: Capacity(600, 20, 20, 2, 1.6).MassFlowTPH, widths: []float64{800, 600, 500}, wantWidth: 600, wantSufficient: true},
		{name: "between standard widths", target: Capacity(900, 20, 20, 2, 1.6).MassFlowTPH, wantWidth: 1000, wantSufficient: true},
		{name: "too large", target: 1e6, wantWidth: 2000, wantSufficient: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectWidth(tt.target, 20, 20, m, tt.widths)
			if sel.WidthMM != tt.wantWidth || sel.Sufficient != tt.wantSufficient {
				t.Errorf("SelectWidth() = %v (sufficient %v), want %v (sufficient %v)",
					sel.WidthMM, sel.Sufficient, tt.wantWidth, tt.wantSufficient)
			}
			if sel.Sufficient && sel.Utilisation > 1 {
				t.Errorf("utilisation %v above 1 for a sufficient width", sel.Utilisation)
			}
		})
	}
}

func TestSelectWidthDoesNotReorderInput(t *testing.T) {
	widths := []float64{1000, 500}
	SelectWidth(1, 20, 20, Material{SpeedMPS: 1, DensityTPM3: 1}, widths)
	if widths[0] != 1000 || widths[1] != 500 {
		t.Errorf("input slice was modified: %v", widths)
	}
}
