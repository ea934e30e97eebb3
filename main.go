package main

import (
	"os"

	"github.com/kyleking/sqlitegui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
