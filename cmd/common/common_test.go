package common

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

func newTestContext() *cli.Context {
	app := cli.NewApp()
	app.Name = "chromeimport"
	app.Version = "test"
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "cmd"}
	return ctx
}

func TestInitItemBar(t *testing.T) {
	p := mpb.New(mpb.WithOutput(io.Discard))
	bar := InitItemBar(p, "history", 0)
	if bar == nil {
		t.Fatalf("expected bar")
	}
	bar.IncrBy(3)
	bar.SetTotal(-1, true)
	p.Wait()
	if !bar.Completed() {
		t.Fatalf("expected bar to be completed")
	}
	if got := bar.Current(); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
}

func TestBeautAndReplic(t *testing.T) {
	if got := Beaut("hi", 4); got != " hi " {
		t.Fatalf("unexpected beaut output: %q", got)
	}
	vals := replic('x', 3)
	if len(vals) != 3 || vals[0] != 'x' {
		t.Fatalf("unexpected replic output: %v", vals)
	}
}

func TestBeautOddRemainder(t *testing.T) {
	if got := Beaut("hi", 5); got != " hi  " {
		t.Fatalf("unexpected beaut output for odd padding: %q", got)
	}
}

func TestBeautWiderThanField(t *testing.T) {
	if got := Beaut("Profile 12", 4); got != "Profile 12" {
		t.Fatalf("expected string unchanged, got %q", got)
	}
}

func TestPrintRuntimeErr(t *testing.T) {
	PrintRuntimeErr(nil, "cmd", "action", nil)
	PrintRuntimeErr(nil, "cmd", "action", errors.New("boom"))
	PrintRuntimeErr(newTestContext(), "cmd", "action", errors.New("boom"))
}

func TestPrintErrWithHelp(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		called = true
	})
	defer SetShowAppHelpAndExit(orig)

	if err := PrintErrWithHelp(ctx, errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatalf("expected help to be called")
	}
}

func TestPrintErrWithHelpNil(t *testing.T) {
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		t.Fatalf("help must not be shown for a nil error")
	})
	defer SetShowAppHelpAndExit(orig)

	if err := PrintErrWithHelp(newTestContext(), nil); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
}

func TestPrintErrWithHelpFlagHelpRequested(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		called = true
	})
	defer SetShowAppHelpAndExit(orig)

	if err := PrintErrWithHelp(ctx, errors.New("flag: help requested")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatalf("expected help to be called")
	}
}

func TestPrintErrWithHelpVersion(t *testing.T) {
	old := VersionCmdStr
	VersionCmdStr = "v0"
	defer func() { VersionCmdStr = old }()
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		t.Fatalf("help must not be shown for -version")
	})
	defer SetShowAppHelpAndExit(orig)

	if err := PrintErrWithHelp(newTestContext(), errors.New("flag provided but not defined: -version")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
}

func TestPrintErrWithCmdHelp(t *testing.T) {
	ctx := newTestContext()
	var shown string
	orig := SetShowCommandHelp(func(_ *cli.Context, name string) error {
		shown = name
		return nil
	})
	defer SetShowCommandHelp(orig)

	if err := PrintErrWithCmdHelp(ctx, errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithCmdHelp: %v", err)
	}
	if shown != "cmd" {
		t.Fatalf("expected help for %q, got %q", "cmd", shown)
	}
}

func TestPrintErrWithCmdHelp_ShowCommandHelpError(t *testing.T) {
	orig := SetShowCommandHelp(func(*cli.Context, string) error {
		return errors.New("boom")
	})
	defer SetShowCommandHelp(orig)

	if err := PrintErrWithCmdHelp(newTestContext(), errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithCmdHelp: %v", err)
	}
}

func TestUsageErrorCallback(t *testing.T) {
	called := false
	orig := SetShowCommandHelp(func(*cli.Context, string) error {
		called = true
		return nil
	})
	defer SetShowCommandHelp(orig)

	if err := UsageErrorCallback(newTestContext(), errors.New("oops"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !called {
		t.Fatalf("expected command help for a command-level error")
	}
}

func TestUsageErrorCallbackNoCommand(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	ctx := cli.NewContext(app, set, nil)
	called := false
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		called = true
	})
	defer SetShowAppHelpAndExit(orig)

	if err := UsageErrorCallback(ctx, errors.New("oops"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !called {
		t.Fatalf("expected app help for an app-level error")
	}
}

func TestHelp(t *testing.T) {
	called := false
	orig := SetShowAppHelpAndExit(func(*cli.Context, int) {
		called = true
	})
	defer SetShowAppHelpAndExit(orig)

	if err := Help(newTestContext()); err != nil {
		t.Fatalf("Help: %v", err)
	}
	if !called {
		t.Fatalf("expected help to be called")
	}
}

func TestHelpWithCommandArg(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Parse([]string{"profiles"})
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "help"}
	var shown string
	orig := SetShowCommandHelp(func(_ *cli.Context, name string) error {
		shown = name
		return nil
	})
	defer SetShowCommandHelp(orig)

	if err := Help(ctx); err != nil {
		t.Fatalf("Help: %v", err)
	}
	if shown != "profiles" {
		t.Fatalf("expected help for profiles, got %q", shown)
	}
}

func TestHelpWithCommandError(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Parse([]string{"nope"})
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "help"}
	orig := SetShowCommandHelp(func(*cli.Context, string) error {
		return errors.New("no such command")
	})
	defer SetShowCommandHelp(orig)

	if err := Help(ctx); err == nil {
		t.Fatalf("expected error from Help")
	}
}

func TestGetVersion(t *testing.T) {
	old := VersionCmdStr
	VersionCmdStr = "chromeimport v1.2.3"
	defer func() { VersionCmdStr = old }()

	if err := GetVersion(newTestContext()); err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
}
