package main

import (
	"os"

	chatvaultcmder "github.com/halcyonco/chatvault/cmd/chatvault"
)

func main() {
	cmd := chatvaultcmder.NewChatvaultCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
