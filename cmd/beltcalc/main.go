package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/beltcalc/beltcalc/pkg/client"
)

var (
	logLevel       = "info"
	unixSocketPath = "/tmp/beltcalc.sock"
	configPath     = "/etc/beltcalc.json"
)

var (
	gCalculation  = "Calculation:"
	gReference    = "Reference:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gCalculation,
		gReference,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: beltcalc daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'beltcalc daemon', or drop --remote to calculate locally.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with '--always-allow-non-root-access'")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beltcalc",
		Short: "beltcalc estimates the carrying capacity of troughed belt conveyors",
		Long: `beltcalc estimates the carrying capacity of troughed belt conveyors.

It derives the material cross section from belt width, idler trough angle and
material surcharge angle using tabulated shape factors, then converts it to
volumetric and mass flow for a given belt speed and bulk density.

Calculations run in-process by default. Pass --remote to send them to a
running 'beltcalc daemon' instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}
			apiClient = client.NewClient(unixSocketPath)
			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path (.ini or .json)")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "beltcalc daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewAngleCommand(),
		NewKFactorCommand(),
		NewAreaCommand(),
		NewCapacityCommand(),
		NewSizeCommand(),
		NewTableCommand(),
		NewConfigCommand(),
		NewTraceCommand(),
		NewDefaultAngleCommand(),
		NewDaemonCommand(),
		NewVersionCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
