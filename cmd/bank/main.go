package main

import (
	"os"

	"github.com/bankingrestapi/bank/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
