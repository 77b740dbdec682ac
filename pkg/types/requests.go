package types

import "github.com/beltcalc/beltcalc/pkg/capacity"

// These types are the JSON contract between the daemon and its clients.

type AngleRequest struct {
	Label capacity.AngleLabel `json:"label"`
}

type AngleResponse struct {
	Degrees float64 `json:"degrees"`
	// Recognised is false when the default angle was substituted.
	Recognised bool `json:"recognised"`
}

type KFactorRequest struct {
	Trough    capacity.AngleLabel `json:"trough"`
	Surcharge capacity.AngleLabel `json:"surcharge"`
}

type KFactorResponse struct {
	TroughDeg    float64 `json:"troughDeg"`
	SurchargeDeg float64 `json:"surchargeDeg"`
	Flat         bool    `json:"flat"`
	K            float64 `json:"k"`
}

// GeometryRequest carries the belt geometry as the UI knows it: angles may
// still be dropdown labels.
type GeometryRequest struct {
	WidthMM   float64             `json:"widthMm"`
	Trough    capacity.AngleLabel `json:"trough"`
	Surcharge capacity.AngleLabel `json:"surcharge"`
}

type CrossSectionResponse struct {
	Geometry     capacity.Geometry     `json:"geometry"`
	CrossSection capacity.CrossSection `json:"crossSection"`
}

type CapacityRequest struct {
	GeometryRequest
	SpeedMPS    float64 `json:"speedMps"`
	DensityTPM3 float64 `json:"densityTpm3"`
}

type CapacityResponse struct {
	Geometry     capacity.Geometry       `json:"geometry"`
	Material     capacity.Material       `json:"material"`
	CrossSection capacity.CrossSection   `json:"crossSection"`
	Result       capacity.CapacityResult `json:"result"`
}

type SizeRequest struct {
	Trough      capacity.AngleLabel `json:"trough"`
	Surcharge   capacity.AngleLabel `json:"surcharge"`
	SpeedMPS    float64             `json:"speedMps"`
	DensityTPM3 float64             `json:"densityTpm3"`
	TargetTPH   float64             `json:"targetTph"`
	// Widths overrides the configured standard width series.
	Widths []float64 `json:"widths,omitempty"`
}

type SizeResponse struct {
	TroughDeg    float64            `json:"troughDeg"`
	SurchargeDeg float64            `json:"surchargeDeg"`
	Selection    capacity.Selection `json:"selection"`
}
