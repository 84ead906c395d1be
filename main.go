package main

import (
	"os"

	"github.com/voyagent/tripmend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
