// Command awesome operates the sharded identity and profile store.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/awesome/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Command failures were already reported in the selected format.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
