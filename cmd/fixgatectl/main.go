// Command fixgatectl operates a session directory file directly: it
// inspects assigned sessions, resets the directory, or serves the
// admin HTTP API, all from a single statically-linked binary.
package main

import (
	"fmt"
	"os"

	"github.com/brightwire/fixgate/cmd/fixgatectl/commands"
)

func main() {
	if err := commands.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
