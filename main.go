// Shadematch as a command line tool and local web application is
// documented in the project's README:
// https://github.com/affodent/shadematch#readme
package main

import (
	"os"

	"github.com/affodent/shadematch/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
