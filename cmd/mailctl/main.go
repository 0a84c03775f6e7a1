package main

import (
	"fmt"
	"os"

	mailctlcmd "github.com/telekom/gt-mail-gateway/pkg/mailctl/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := mailctlcmd.NewRootCommand(mailctlcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
