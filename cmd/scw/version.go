package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var versionCMD = &cli.Command{
	Name:    "version",
	Aliases: []string{"v"},
	Usage:   "Print build information",
	Action: func(*cli.Context) error {
		printVersion(os.Stdout)
		return nil
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s (branch %s, commit %s)\n", repo.AppName, repo.BuildVersion, repo.BuildBranch, repo.BuildCommit)
	fmt.Fprintf(w, "built:    %s\n", repo.BuildDate)
	fmt.Fprintf(w, "platform: %s\n", repo.Platform)
	fmt.Fprintf(w, "go:       %s\n", repo.GoVersion)
}
