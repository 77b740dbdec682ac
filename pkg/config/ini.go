package config

import (
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// INI layout:
//
//	[engine]
//	defaultAngle   = 20
//	trace          = false
//	standardWidths = 500, 650, 800
//
//	[daemon]
//	allowNonRootAccess = false
//	listenAddress      = 127.0.0.1:8650
const (
	iniSectionEngine = "engine"
	iniSectionDaemon = "daemon"
)

func decodeINI(b []byte) (*RawFileConfig, error) {
	file, err := ini.Load(b)
	if err != nil {
		return nil, err
	}

	conf := &RawFileConfig{}

	engine := file.Section(iniSectionEngine)
	if engine.HasKey("defaultAngle") {
		v, err := engine.Key("defaultAngle").Float64()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid defaultAngle")
		}
		conf.DefaultAngle = &v
	}
	if engine.HasKey("trace") {
		v, err := engine.Key("trace").Bool()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid trace")
		}
		conf.Trace = &v
	}
	if engine.HasKey("standardWidths") {
		widths, err := engine.Key("standardWidths").StrictFloat64s(",")
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid standardWidths")
		}
		conf.StandardWidths = widths
	}

	daemon := file.Section(iniSectionDaemon)
	if daemon.HasKey("allowNonRootAccess") {
		v, err := daemon.Key("allowNonRootAccess").Bool()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid allowNonRootAccess")
		}
		conf.AllowNonRootAccess = &v
	}
	if daemon.HasKey("listenAddress") {
		v := daemon.Key("listenAddress").String()
		conf.ListenAddress = &v
	}

	return conf, nil
}

func encodeINI(c *RawFileConfig, w io.Writer) error {
	file := ini.Empty()

	engine, err := file.NewSection(iniSectionEngine)
	if err != nil {
		return err
	}
	if c.DefaultAngle != nil {
		if _, err := engine.NewKey("defaultAngle", strconv.FormatFloat(*c.DefaultAngle, 'f', -1, 64)); err != nil {
			return err
		}
	}
	if c.Trace != nil {
		if _, err := engine.NewKey("trace", strconv.FormatBool(*c.Trace)); err != nil {
			return err
		}
	}
	if len(c.StandardWidths) > 0 {
		parts := make([]string, 0, len(c.StandardWidths))
		for _, w := range c.StandardWidths {
			parts = append(parts, strconv.FormatFloat(w, 'f', -1, 64))
		}
		if _, err := engine.NewKey("standardWidths", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}

	daemon, err := file.NewSection(iniSectionDaemon)
	if err != nil {
		return err
	}
	if c.AllowNonRootAccess != nil {
		if _, err := daemon.NewKey("allowNonRootAccess", strconv.FormatBool(*c.AllowNonRootAccess)); err != nil {
			return err
		}
	}
	if c.ListenAddress != nil {
		if _, err := daemon.NewKey("listenAddress", *c.ListenAddress); err != nil {
			return err
		}
	}

	_, err = file.WriteTo(w)
	return err
}
