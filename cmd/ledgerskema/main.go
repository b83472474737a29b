// Command ledgerskema validates block records against transaction schemas
// loaded from disk, tolerating the violations listed in an exception file.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
