// Command usermgmt manages a local user list seeded from a remote directory.
package main

import (
	"fmt"
	"os"

	"github.com/erdilatifi/User-Management-App/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
