package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beltcalc/beltcalc/pkg/config"
	daemonutils "github.com/beltcalc/beltcalc/pkg/utils/daemon"
)

var gInstallation = "Installation:"

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false
	listen := ""

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install beltcalc daemon as a systemd service",
		GroupID: gInstallation,
		Long: `Install beltcalc daemon as a systemd service (system-wide).

This makes the daemon run in the background and start on boot. You must run this command as root.

By default, only root may use the daemon socket. Use --allow-non-root-access to let other users send calculations with --remote without sudo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the beltcalc daemon.")
			} else {
				logrus.Info("only root user is allowed to access the beltcalc daemon.")
			}
			if listen != "" {
				conf.SetListenAddress(listen)
			}

			err = daemonutils.Install(daemonutils.UnitOptions{
				ConfigPath: configPath,
				SocketPath: unixSocketPath,
			})
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()
			cmd.Printf("systemd will run the current binary (%s). If you move or delete it, run 'beltcalc install' again.\n", exePath)

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access the beltcalc daemon.")
	f.StringVar(&listen, "listen", "", "Also serve the daemon on this TCP address (saved to the config file).")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall beltcalc daemon",
		GroupID: gInstallation,
		Long: `Stop the beltcalc daemon and remove its systemd service. The config file is kept.

You must run this command as root.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := daemonutils.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}
			logrus.Infof("successfully uninstalled beltcalc daemon")
			return nil
		},
	}
}
