package capacity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// DefaultAngle is used when a label carries no usable angle.
const DefaultAngle = 20.0

var (
	numeralPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

	// Words that mark a flat (zero trough) selection in the UI.
	flatMarkers = []string{"flat", "平"}

	degreeSignReplacer = strings.NewReplacer("º", "°", "˚", "°")
)

// AngleLabel is what the UI hands over for an angle: either a display string
// such as "35° (DIN)" or a value that is already in degrees.
type AngleLabel struct {
	text    string
	degrees float64
	numeric bool
}

// LabelText wraps a display string.
func LabelText(s string) AngleLabel {
	return AngleLabel{text: s}
}

// LabelDegrees wraps a numeric angle.
func LabelDegrees(d float64) AngleLabel {
	return AngleLabel{degrees: d, numeric: true}
}

// IsNumeric reports whether the label was built from a number.
func (l AngleLabel) IsNumeric() bool {
	return l.numeric
}

func (l AngleLabel) String() string {
	if l.numeric {
		return strconv.FormatFloat(l.degrees, 'f', -1, 64) + "°"
	}
	return l.text
}

func (l AngleLabel) MarshalJSON() ([]byte, error) {
	if l.numeric {
		return json.Marshal(l.degrees)
	}
	return json.Marshal(l.text)
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (l *AngleLabel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = AngleLabel{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = LabelText(s)
		return nil
	}

	var d float64
	if err := json.Unmarshal(b, &d); err != nil {
		return fmt.Errorf("angle label must be a string or a number: %w", err)
	}
	*l = LabelDegrees(d)
	return nil
}

// LookupAngle extracts degrees from a label. ok is false when nothing usable
// was found, in which case callers substitute their default.
func LookupAngle(label AngleLabel) (deg float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			deg, ok = 0, false
		}
	}()

	if label.numeric {
		if math.IsNaN(label.degrees) || math.IsInf(label.degrees, 0) {
			return 0, false
		}
		return label.degrees, true
	}

	s := strings.TrimSpace(degreeSignReplacer.Replace(width.Fold.String(label.text)))
	if s == "" {
		return 0, false
	}

	lower := strings.ToLower(s)
	for _, marker := range flatMarkers {
		if strings.Contains(lower, marker) {
			return 0, true
		}
	}

	if hasZeroDegrees(s) {
		return 0, true
	}

	numeral := numeralPattern.FindString(s)
	if numeral == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseAngle never fails: anything unrecognised yields defaultDeg.
func ParseAngle(label AngleLabel, defaultDeg float64) float64 {
	if v, ok := LookupAngle(label); ok {
		return v
	}
	return defaultDeg
}

// ParseTroughLabel parses a trough angle dropdown value.
func ParseTroughLabel(s string) float64 {
	return ParseAngle(LabelText(s), DefaultAngle)
}

// ParseSurchargeLabel parses a surcharge angle dropdown value.
func ParseSurchargeLabel(s string) float64 {
	return ParseAngle(LabelText(s), DefaultAngle)
}

// hasZeroDegrees looks for a standalone "0°", i.e. one whose zero does not
// end a longer numeral like "20°" or "1.0°".
func hasZeroDegrees(s string) bool {
	const token = "0°"
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], token)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 || !isNumeralByte(s[i-1]) {
			return true
		}
		from = i + 1
	}
	return false
}

func isNumeralByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}
