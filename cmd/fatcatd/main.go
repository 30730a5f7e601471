// Command fatcatd is the fatcat catalog server's entrypoint, delegating
// all subcommand dispatch to internal/cmd (default subcommand: serve).
package main

import (
	"os"

	"github.com/mm--/fatcat/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
