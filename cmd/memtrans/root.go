package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "memtrans",
		Short: "Functional last-level cache simulator and DRAM transfer analyzer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newReplayCmd())
	return root
}
