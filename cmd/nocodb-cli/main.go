package main

import (
	"github.com/rzbill/nocodb-cli/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
