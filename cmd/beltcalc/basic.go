package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
			if v, err := apiClient.GetVersion(); err == nil {
				cmd.Printf("daemon: %s\n", v)
				if v != version.Version {
					logrus.WithFields(logrus.Fields{
						"clientVersion": version.Version,
						"daemonVersion": v,
					}).Warn("version mismatch between client and daemon")
				}
			}
		},
	}
}

func NewConfigCommand() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Show the effective configuration",
		GroupID: gReference,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var conf config.Config
			if remote {
				raw, err := apiClient.GetConfig()
				if err != nil {
					return fmt.Errorf("failed to get config: %w", err)
				}
				conf = config.NewFileFromConfig(raw, "")
			} else {
				f, err := config.NewFile(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				conf = f
			}

			cmd.Println(bold("Engine:"))
			cmd.Printf("  Default angle: %s\n", bold("%v°", conf.DefaultAngle()))
			cmd.Printf("  Trace calculations: %s\n", bool2Text(conf.Trace()))
			cmd.Printf("  Standard widths: %s\n", bold("%v mm", conf.StandardWidths()))
			cmd.Println(bold("Daemon:"))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			addr := conf.ListenAddress()
			if addr == "" {
				addr = "(unix socket only)"
			}
			cmd.Printf("  TCP listen address: %s\n", bold("%s", addr))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "show the configuration of the running daemon")
	return cmd
}

func NewTraceCommand() *cobra.Command {
	return newEnableDisableCommand(
		"trace",
		"per-calculation trace events in the daemon",
		`Set whether the daemon logs a trace event for every calculation.

Each event records the inputs, the interpolated shape factor and the resulting
area and capacity. Events are logged at debug level, so the daemon must run
with '--log-level debug' for them to show up.`,
		func() (string, error) { return apiClient.SetTrace(true) },
		func() (string, error) { return apiClient.SetTrace(false) },
	)
}

func NewDefaultAngleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "default-angle [degrees]",
		Short:   "Set the angle used for unreadable labels",
		GroupID: gAdvanced,
		Long: `Set the angle used for unreadable labels.

Angle labels that cannot be read, such as an empty selection, resolve to this
angle. It is 20° unless configured otherwise and must be between 0 and 90.`,
		RunE: func(_ *cobra.Command, args []string) error {
			deg, err := parseFloatArg(args, "angle")
			if err != nil {
				return err
			}
			if deg < 0 || deg > 90 {
				return fmt.Errorf("angle must be between 0 and 90, got %v", deg)
			}

			ret, err := apiClient.SetDefaultAngle(deg)
			if err != nil {
				return fmt.Errorf("failed to set default angle: %w", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set default angle to %v°", deg)

			return nil
		},
	}
}
