// Command eav loads entities and their EAV attributes from SQLite.
package main

import (
	"os"

	"github.com/roach88/eav/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
