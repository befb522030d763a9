package main

import (
	"fmt"
	"io"
	"os"

	"github.com/warpdl/chromeimport/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var (
	osExit           = os.Exit
	errOut io.Writer = os.Stderr
)

func main() {
	osExit(runMain(errOut, os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}

// runMain executes the command line and maps its error to an exit code,
// reporting the error on w.
func runMain(w io.Writer, args []string, execute func([]string) error) int {
	if err := execute(args); err != nil {
		fmt.Fprintf(w, "chromeimport: %s\n", err)
		return 1
	}
	return 0
}
