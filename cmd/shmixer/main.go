// shmixer is a bash script minifier with optional variable obfuscation
// and source bundling. It rewrites scripts as text, preserving runtime
// behavior; no bash is parsed into a syntax tree or executed.
package main

import (
	"github.com/whit3rabbit/shmixer/cmd/shmixer/cmd"
)

func main() {
	cmd.Execute()
}
