// Command ncdb is the New Cadillac Database question answering service.
package main

import (
	"os"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
