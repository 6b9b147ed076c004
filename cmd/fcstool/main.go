// Command fcstool inspects, converts and archives FCS files.
package main

import (
	"os"
)

var exitFunc = os.Exit

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		exitFunc(1)
	}
}
