package daemon

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
)

var (
	unitName = "beltcalc.service"
	unitPath = "/etc/systemd/system/" + unitName

	// systemctl is replaced in tests.
	systemctl = func(args ...string) error {
		return exec.Command("systemctl", args...).Run()
	}
)

// unitQuoter escapes a value for a double-quoted ExecStart argument. systemd
// expands % specifiers and $ variables even inside quotes.
var unitQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `%`, `%%`, `$`, `$$`)

func quoteUnitArg(s string) string {
	return `"` + unitQuoter.Replace(s) + `"`
}

var unitTemplate = template.Must(template.New("unit").Funcs(template.FuncMap{"quote": quoteUnitArg}).Parse(`[Unit]
Description=beltcalc conveyor capacity daemon
After=network.target

[Service]
Type=simple
ExecStart={{ quote .Executable }} daemon --config {{ quote .ConfigPath }} --daemon-socket {{ quote .SocketPath }}{{ if .ListenAddress }} --listen {{ quote .ListenAddress }}{{ end }}
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure

[Install]
WantedBy=multi-user.target
`))

// UnitOptions are the daemon command line baked into the service unit.
type UnitOptions struct {
	Executable    string
	ConfigPath    string
	SocketPath    string
	ListenAddress string
}

// RenderUnit returns the systemd unit file for opts.
func RenderUnit(opts UnitOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, opts); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", unitName, err)
	}
	return buf.Bytes(), nil
}

// Install writes the service unit for the current executable and starts it.
func Install(opts UnitOptions) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}
	logrus.Infof("current executable path: %s", exePath)
	opts.Executable = exePath

	unit, err := RenderUnit(opts)
	if err != nil {
		return err
	}

	if _, err := os.Stat(unitPath); err == nil {
		logrus.Warnf("%s already exists, overwriting", unitPath)
	}

	logrus.Infof("writing %s", unitPath)
	if err := os.MkdirAll(filepath.Dir(unitPath), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(unitPath), err)
	}
	if err := os.WriteFile(unitPath, unit, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", unitPath, err)
	}

	logrus.Infof("starting beltcalc daemon")
	if err := systemctl("daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	if err := systemctl("enable", "--now", unitName); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unitName, err)
	}

	return nil
}
