// Command cmut instruments C/C++ translation units for mutation
// testing: see internal/cli for the command tree.
package main

import "github.com/cmut-dev/cmut/internal/cli"

func main() {
	cli.Execute()
}
