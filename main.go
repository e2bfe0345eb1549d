package main

import (
	"fmt"
	"os"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cmd.ExitCode(err))
	}
}
