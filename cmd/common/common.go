// Package common provides helpers shared by the chromeimport commands:
// progress bar construction, help and version output, and error reporting.
package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// VersionCmdStr holds the formatted version string displayed by the version command.
// It is populated by Execute with the platform, build date and commit hash.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// SetShowAppHelpAndExit swaps the function used to print application help
// and returns the previous one. Tests use it to avoid exiting.
func SetShowAppHelpAndExit(fn func(*cli.Context, int)) func(*cli.Context, int) {
	prev := showAppHelpAndExit
	showAppHelpAndExit = fn
	return prev
}

// SetShowCommandHelp swaps the function used to print command help and
// returns the previous one.
func SetShowCommandHelp(fn func(*cli.Context, string) error) func(*cli.Context, string) error {
	prev := showCommandHelp
	showCommandHelp = fn
	return prev
}

// InitItemBar adds a spinner bar for one import category to p. The number of
// records delivered so far is shown next to the name. The total is unknown up
// front, so callers complete the bar with SetTotal(-1, true).
func InitItemBar(p *mpb.Progress, name string, width int) *mpb.Bar {
	if width < len(name)+1 {
		width = len(name) + 1
	}
	return p.New(0,
		mpb.SpinnerStyle(),
		mpb.BarFillerOnComplete("✓"),
		mpb.BarFillerOnAbort("✗"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: width, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.CurrentNoUnit("%d records", decor.WC{W: 12}),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 6}), ""),
		),
	)
}

// Help displays help information for the application or a specific command.
// With no argument, or "help", the application help is printed and the
// process exits. Otherwise help for the named command is shown.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	return showCommandHelp(ctx, arg)
}

// GetVersion prints VersionCmdStr.
func GetVersion(ctx *cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints an error that happened while running cmd, tagged
// with the failing action. ctx may be nil, in which case os.Args[0] names the
// program.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			err := showCommandHelp(ctx, ctx.Command.Name)
			if err != nil {
				fmt.Println(err.Error())
			}
		},
	)
}

// PrintErrWithHelp prints err followed by the application help and exits
// with status 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			showAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	if strings.Contains(estr, "-version") {
		return GetVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook for the app and its commands.
// It prints the error with the help text of whichever level failed.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Beaut centers s within a field of width n. When the padding is odd the
// extra space goes to the right.
func Beaut(s string, n int) (b string) {
	n1 := len(s)
	x := n - n1
	if x <= 0 {
		return s
	}
	x1 := x / 2
	w := string(
		replic(' ', x1),
	)
	b = w
	b += s
	b += w
	if x%2 != 0 {
		b += " "
	}
	return
}

func replic[aT any](v aT, n int) []aT {
	a := make([]aT, n)
	for i := range a {
		a[i] = v
	}
	return a
}
