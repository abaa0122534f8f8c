// Command maxlines reads files in batches of lines and writes every batch as
// a JSON record, or the lines as plain text.
package main

import (
	"os"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
