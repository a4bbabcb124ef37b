// Command memtrans is the reference driver for the functional LLC
// simulator: it plays the role the original PIN tool's main()/Fini() did —
// parse configuration, construct the engine, feed it a trace, and write the
// report on exit.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("memtrans failed")
		os.Exit(1)
	}
}
