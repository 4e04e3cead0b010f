package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ttkb-llc/mipsmatch/cmd"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "mipsmatch"
	app.Usage = "fingerprint and scan for reused MIPS code across overlays"
	app.Description = "fingerprint and scan for reused MIPS code across overlays"
	app.Version = version
	app.Commands = []*cli.Command{
		cmd.FingerprintCommand,
		cmd.ScanCommand,
	}

	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
