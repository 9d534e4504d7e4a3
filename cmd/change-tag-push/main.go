package main

import (
	"os"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
