package main

import (
	"os"

	"github.com/domtest/jqassert/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
