package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beltcalc/beltcalc/pkg/daemon"
	"github.com/beltcalc/beltcalc/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the daemon socket.
	alwaysAllowNonRootAccess = false
	// listenAddress is an optional TCP address served in addition to the unix socket.
	listenAddress = ""
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run beltcalc daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run beltcalc daemon in the foreground.

The daemon serves calculations over HTTP on a unix socket, and optionally on a
TCP address for browser front ends. Clients may also hold a websocket open on
/ws to recalculate as inputs change. Send SIGHUP to reload the config file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("beltcalc daemon starting")
			return daemon.Run(configPath, unixSocketPath, listenAddress, alwaysAllowNonRootAccess)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.StringVar(&listenAddress, "listen", "",
		"Also serve on this TCP address, e.g. 127.0.0.1:8455 (default: from config, or none)")

	return cmd
}
