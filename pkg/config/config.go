package config

import "github.com/sirupsen/logrus"

type Config interface {
	DefaultAngle() float64
	Trace() bool
	AllowNonRootAccess() bool
	StandardWidths() []float64
	ListenAddress() string

	SetDefaultAngle(float64)
	SetTrace(bool)
	SetAllowNonRootAccess(bool)
	SetStandardWidths([]float64)
	SetListenAddress(string)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
