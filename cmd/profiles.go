package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/warpdl/chromeimport/cmd/common"
	"github.com/warpdl/chromeimport/internal/profile"
)

var discoverBrowsers = profile.Discover

func listProfiles(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	var found []profile.Installation
	if dir := ctx.Args().First(); dir != "" {
		if profiles := profile.ListProfiles(hostFs, dir); len(profiles) > 0 {
			found = append(found, profile.Installation{
				Browser:     filepath.Base(filepath.Clean(dir)),
				UserDataDir: dir,
				Profiles:    profiles,
			})
		}
	} else {
		found = discoverBrowsers(hostFs)
	}
	if len(found) == 0 {
		fmt.Fprintln(stdout, "chromeimport: no browser profiles found")
		return nil
	}
	var txt strings.Builder
	for _, inst := range found {
		fmt.Fprintf(&txt, "%s (%s)\n", inst.Browser, inst.UserDataDir)
		txt.WriteString("------------------------------------------------------\n")
		txt.WriteString("|Num|      Directory      |          Name          |\n")
		txt.WriteString("|---|---------------------|------------------------|\n")
		for i, p := range inst.Profiles {
			fmt.Fprintf(&txt, "| %d | %s | %s |\n", i+1, cell(p.Dir, 19), cell(p.Name, 22))
		}
		txt.WriteString("------------------------------------------------------\n")
	}
	fmt.Fprint(stdout, txt.String())
	return nil
}

func cell(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return common.Beaut(s, n)
}
