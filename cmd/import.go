package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/chromeimport/cmd/common"
	sharedcommon "github.com/warpdl/chromeimport/common"
	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/export"
	"github.com/warpdl/chromeimport/internal/favicon"
	"github.com/warpdl/chromeimport/internal/importer"
	"github.com/warpdl/chromeimport/internal/oscrypt"
	"github.com/warpdl/chromeimport/internal/profile"
	"github.com/warpdl/chromeimport/pkg/logger"
)

var (
	sourceDir     string
	itemList      string
	outDir        string
	passwordStore string
	folderLabel   string
	noProgress    bool
	logFile       string
	verbose       bool

	importFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "source, s",
			Usage:       "profile directory to import (default: first installed browser's Default profile)",
			EnvVar:      sharedcommon.SourceEnv,
			Destination: &sourceDir,
		},
		cli.StringFlag{
			Name:        "items, i",
			Usage:       "comma separated categories: history, favorites, cookies, passwords or all",
			Value:       "all",
			Destination: &itemList,
		},
		cli.StringFlag{
			Name:        "out, o",
			Usage:       "directory the exported files are written to",
			Value:       sharedcommon.DefaultOutDir,
			Destination: &outDir,
		},
		cli.StringFlag{
			Name:        "password-store",
			Usage:       "credential store: auto, basic, kwallet, kwallet5, gnome, gnome-keyring, gnome-libsecret or logindb",
			EnvVar:      sharedcommon.PasswordStoreEnv,
			Destination: &passwordStore,
		},
		cli.StringFlag{
			Name:        "folder-label",
			Usage:       "name of the folder imported bookmarks are placed under",
			Value:       importer.DefaultFolderLabel,
			Destination: &folderLabel,
		},
		cli.BoolFlag{
			Name:        "no-progress",
			Usage:       "use this flag to disable progress bars (default: false)",
			Destination: &noProgress,
		},
		cli.StringFlag{
			Name:        "log-file, l",
			Usage:       "also append log messages to this file",
			Destination: &logFile,
		},
		cli.BoolFlag{
			Name:        "verbose, V",
			Usage:       "log informational messages (default: false)",
			EnvVar:      sharedcommon.DebugEnv,
			Destination: &verbose,
		},
	}
)

var (
	hostFs         afero.Fs  = afero.NewOsFs()
	stdout         io.Writer = os.Stdout
	stderr         io.Writer = os.Stderr
	defaultSource            = profile.DefaultSource
	newCredentials           = func(opts credstore.ResolverOptions) importer.CredentialResolver {
		return credstore.NewResolver(opts)
	}
)

func importProfile(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	items, err := profile.ParseItems(itemList)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if !credstore.ValidStore(passwordStore) {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("unknown password store %q", passwordStore))
	}
	path, err := sourcePath(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "import", "find_profile", err)
		return nil
	}
	src := profile.SourceProfile{Path: path, Items: items, Fs: hostFs}
	if err := profile.Validate(src); err != nil {
		common.PrintRuntimeErr(ctx, "import", "validate", err)
		return nil
	}

	l, err := newLogger()
	if err != nil {
		common.PrintRuntimeErr(ctx, "import", "open_log", err)
		return nil
	}
	defer l.Close()

	sink, err := export.NewSink(export.Options{
		Fs:      hostFs,
		Dir:     outDir,
		Profile: src.Path,
		Logger:  l,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "import", "create_output", err)
		return nil
	}

	dec := oscrypt.New(oscrypt.Options{
		Password:       os.Getenv(sharedcommon.SafeStorageKeyEnv),
		PasswordLookup: credstore.LookupSafeStoragePassword,
		LocalState:     readLocalState(src),
	})
	session := importer.NewSession(importer.Options{
		Logger: l,
		Codec:  favicon.Codec{},
		Credentials: newCredentials(credstore.ResolverOptions{
			Store:     passwordStore,
			Decrypter: dec,
			Logger:    l,
		}),
		FolderLabel: folderLabel,
	})

	var target importer.Sink = sink
	if !noProgress {
		target = newProgressSink(sink, stdout)
	}

	runCtx, cancel := setupShutdownHandler()
	defer cancel()
	session.Run(runCtx, src, target)

	if err := sink.Err(); err != nil {
		common.PrintRuntimeErr(ctx, "import", "export", err)
		return nil
	}
	printSummary(stdout, sink.Summary(), runCtx.Err() != nil)
	return nil
}

// sourcePath picks the profile directory: --source, then the first
// argument, then the auto-detected default.
func sourcePath(ctx *cli.Context) (string, error) {
	if sourceDir != "" {
		return sourceDir, nil
	}
	if arg := ctx.Args().First(); arg != "" {
		return arg, nil
	}
	path, err := defaultSource(hostFs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("no Chrome-family browser profile found, use --source")
		}
		return "", err
	}
	return path, nil
}

// newLogger logs to stderr at warning level, or info with --verbose. A
// --log-file receives every message regardless of level.
func newLogger() (logger.Logger, error) {
	level := logger.LevelWarning
	if verbose {
		level = logger.LevelInfo
	}
	var console logger.Logger = logger.NewLevelLogger(level,
		logger.NewStandardLogger(log.New(stderr, "chromeimport: ", 0)))
	if logFile == "" {
		return console, nil
	}
	fl, err := logger.NewFileLogger(hostFs, logFile)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, fl), nil
}

// readLocalState returns the user-data dir's Local State, or nil. Only the
// Windows key unwrap needs it.
func readLocalState(src profile.SourceProfile) []byte {
	data, err := profile.ReadFile(src.Fs, filepath.Join(src.UserDataDir(), profile.LocalStateFile))
	if err != nil {
		return nil
	}
	return data
}

var summaryRows = []struct {
	key  string
	file string
	item profile.Item
}{
	{profile.History.String(), export.HistoryFile, profile.History},
	{profile.Favorites.String(), export.BookmarksFile, profile.Favorites},
	{"favicons", export.FaviconsFile, profile.Favorites},
	{profile.Cookies.String(), export.CookiesFile, profile.Cookies},
	{profile.Passwords.String(), export.PasswordsFile, profile.Passwords},
}

func printSummary(w io.Writer, sum export.Summary, interrupted bool) {
	took := sum.Finished.Sub(sum.Started).Round(time.Millisecond)
	fmt.Fprintf(w, "\nImported %s into %s (%s)\n", sum.Profile, outDir, took)
	for _, row := range summaryRows {
		n := sum.Counts[row.key]
		if n == 0 && !slices.Contains(sum.Items, row.item.String()) {
			continue
		}
		size := "-"
		if info, err := hostFs.Stat(filepath.Join(outDir, row.file)); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(w, "  %-10s %9s  %s\n", row.key, humanize.Comma(int64(n)), size)
	}
	if sum.Blacklisted > 0 {
		fmt.Fprintf(w, "  %s of the passwords are never-save entries\n", humanize.Comma(int64(sum.Blacklisted)))
	}
	if interrupted {
		fmt.Fprintln(w, "Import was interrupted; the export is incomplete.")
	}
}
