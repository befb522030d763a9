package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/chromeimport/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "chromeimport",
		HelpName:              "chromeimport",
		Usage:                 "Import data from a Chrome browser profile.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "chromeimport <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "import",
				Aliases:                []string{"i"},
				Usage:                  "import a profile into the output directory",
				UsageText:              "[flags] [profile dir]",
				Description:            ImportDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 importProfile,
				UseShortOptionHandling: true,
				Flags:                  importFlags,
			},
			{
				Name:               "profiles",
				Aliases:            []string{"p"},
				Usage:              "list installed browsers and their profiles",
				UsageText:          "[user-data dir]",
				Description:        ProfilesDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             listProfiles,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of chromeimport",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:                 importProfile,
		Flags:                  importFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
