package config

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		DefaultAngle:       ptr.To(capacity.DefaultAngle),
		Trace:              ptr.To(false),
		AllowNonRootAccess: ptr.To(false),
		StandardWidths:     capacity.StandardWidths(),
		// Empty means unix socket only.
		ListenAddress: ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	DefaultAngle       *float64  `json:"defaultAngle,omitempty"`
	Trace              *bool     `json:"trace,omitempty"`
	AllowNonRootAccess *bool     `json:"allowNonRootAccess,omitempty"`
	StandardWidths     []float64 `json:"standardWidths,omitempty"`
	ListenAddress      *string   `json:"listenAddress,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		DefaultAngle:       ptr.To(c.DefaultAngle()),
		Trace:              ptr.To(c.Trace()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		StandardWidths:     c.StandardWidths(),
		ListenAddress:      ptr.To(c.ListenAddress()),
	}

	return rawConfig, nil
}

func (f *File) DefaultAngle() float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DefaultAngle != nil {
		return *f.c.DefaultAngle
	}
	return *defaultFileConfig.DefaultAngle
}

func (f *File) Trace() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Trace != nil {
		return *f.c.Trace
	}
	return *defaultFileConfig.Trace
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

// StandardWidths returns a copy; callers may sort or modify it.
func (f *File) StandardWidths() []float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.c.StandardWidths) > 0 {
		return append([]float64(nil), f.c.StandardWidths...)
	}
	return append([]float64(nil), defaultFileConfig.StandardWidths...)
}

func (f *File) ListenAddress() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ListenAddress != nil {
		return *f.c.ListenAddress
	}
	return *defaultFileConfig.ListenAddress
}

func (f *File) SetDefaultAngle(d float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if math.IsNaN(d) || d < 0 || d > 90 {
		panic("default angle must be between 0 and 90 degrees")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DefaultAngle = &d
}

func (f *File) SetTrace(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Trace = &b
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) SetStandardWidths(widths []float64) {
	if f.c == nil {
		panic("config is nil")
	}

	for _, w := range widths {
		if !(w > 0) {
			panic("standard widths must be positive")
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.StandardWidths = append([]float64(nil), widths...)
}

func (f *File) SetListenAddress(addr string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ListenAddress = &addr
}

func (f *File) isINI() bool {
	return strings.EqualFold(filepath.Ext(f.filepath), ".ini")
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		f.c = &RawFileConfig{}
		return nil
	}

	if f.isINI() {
		conf, err := decodeINI(b)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to parse ini config from file %s", f.filepath)
		}
		f.c = conf
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	if f.isINI() {
		if err := encodeINI(f.c, fp); err != nil {
			return pkgerrors.Wrapf(err, "failed to encode ini config to file %s", f.filepath)
		}
		return nil
	}

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"defaultAngle":       f.DefaultAngle(),
		"trace":              f.Trace(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"standardWidths":     f.StandardWidths(),
		"listenAddress":      f.ListenAddress(),
	}
}
