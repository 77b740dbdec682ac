package capacity

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestParseTroughLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{name: "degree with suffix", label: "20° (xx)", want: 20},
		{name: "empty", label: "", want: DefaultAngle},
		{name: "whitespace", label: "   ", want: DefaultAngle},
		{name: "flat with zero", label: "0° (flat)", want: 0},
		{name: "flat marker only", label: "Flat belt", want: 0},
		{name: "chinese flat marker", label: "平形", want: 0},
		{name: "bare zero degree", label: "0°", want: 0},
		{name: "ten degrees is not zero", label: "10°", want: 10},
		{name: "thirty degrees", label: "30° standard", want: 30},
		{name: "fractional", label: "27.5°", want: 27.5},
		{name: "one point zero is not zero", label: "1.0°", want: 1},
		{name: "first numeral wins", label: "35° / 45°", want: 35},
		{name: "full width digits", label: "３５°", want: 35},
		{name: "ordinal indicator as degree", label: "0º", want: 0},
		{name: "no numeral", label: "steep", want: DefaultAngle},
		{name: "numeral overflow", label: strings.Repeat("9", 400) + "°", want: DefaultAngle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTroughLabel(tt.label); got != tt.want {
				t.Errorf("ParseTroughLabel(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestParseSurchargeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{label: "20°", want: 20},
		{label: "30° (free flowing)", want: 30},
		{label: "10", want: 10},
		{label: "0°", want: 0},
		{label: "", want: DefaultAngle},
		{label: "n/a", want: DefaultAngle},
	}
	for _, tt := range tests {
		if got := ParseSurchargeLabel(tt.label); got != tt.want {
			t.Errorf("ParseSurchargeLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestParseAngleNumeric(t *testing.T) {
	tests := []struct {
		name  string
		label AngleLabel
		def   float64
		want  float64
	}{
		{name: "plain number", label: LabelDegrees(35), def: 20, want: 35},
		{name: "zero", label: LabelDegrees(0), def: 20, want: 0},
		{name: "NaN", label: LabelDegrees(math.NaN()), def: 15, want: 15},
		{name: "infinity", label: LabelDegrees(math.Inf(1)), def: 15, want: 15},
		{name: "zero value label", label: AngleLabel{}, def: 12.5, want: 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAngle(tt.label, tt.def); got != tt.want {
				t.Errorf("ParseAngle(%v, %v) = %v, want %v", tt.label, tt.def, got, tt.want)
			}
		})
	}
}

func TestLookupAngleRecognised(t *testing.T) {
	if _, ok := LookupAngle(LabelText("n/a")); ok {
		t.Errorf("LookupAngle(n/a) should not be recognised")
	}
	if v, ok := LookupAngle(LabelText("45°")); !ok || v != 45 {
		t.Errorf("LookupAngle(45°) = %v, %v, want 45, true", v, ok)
	}
}

func TestAngleLabelJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		numeric bool
		want    float64
		wantErr bool
	}{
		{name: "string", input: `"35° (DIN)"`, want: 35},
		{name: "number", input: `25`, numeric: true, want: 25},
		{name: "null", input: `null`, want: DefaultAngle},
		{name: "bool", input: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l AngleLabel
			err := json.Unmarshal([]byte(tt.input), &l)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if l.IsNumeric() != tt.numeric {
				t.Errorf("IsNumeric() = %v, want %v", l.IsNumeric(), tt.numeric)
			}
			if got := ParseAngle(l, DefaultAngle); got != tt.want {
				t.Errorf("ParseAngle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleLabelInStruct(t *testing.T) {
	var req struct {
		Trough    AngleLabel `json:"trough"`
		Surcharge AngleLabel `json:"surcharge"`
	}
	if err := json.Unmarshal([]byte(`{"trough":"0° (flat)","surcharge":30}`), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := ParseAngle(req.Trough, DefaultAngle); got != 0 {
		t.Errorf("trough = %v, want 0", got)
	}
	if got := ParseAngle(req.Surcharge, DefaultAngle); got != 30 {
		t.Errorf("surcharge = %v, want 30", got)
	}

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"trough":"0° (flat)","surcharge":30}` {
		t.Errorf("Marshal = %s", b)
	}
}
