// cmd/scatter/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bethropolis/scatter/internal/config"
	"github.com/bethropolis/scatter/internal/engine"
	"github.com/bethropolis/scatter/internal/event"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/bethropolis/scatter/internal/plugin"
	"github.com/bethropolis/scatter/internal/search"
	"github.com/bethropolis/scatter/internal/theme"
	"github.com/bethropolis/scatter/internal/tui"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const version = "0.1.0"

// domainFlags holds the §6 CLI flag table, parsed on the same FlagSet as
// the ambient config.Flags so the whole process has exactly one
// pflag.Parse call.
type domainFlags struct {
	searchText       *string
	replaceText      *string
	fixedStrings     *bool
	matchWholeWord   *bool
	caseInsensitive  *bool
	advancedRegex    *bool
	multiline        *bool
	interpretEscapes *bool
	hidden           *bool
	includeGlobs     *string
	excludeGlobs     *string
	immediateSearch  *bool
	noTUI            *bool
	configDir        *string
	dryRun           *bool
	maxFileSize      *int64
}

func defineDomainFlags(fs *pflag.FlagSet) *domainFlags {
	d := &domainFlags{}
	d.searchText = fs.StringP("search-text", "s", "", "Pre-populate search field")
	d.replaceText = fs.StringP("replace-text", "r", "", "Pre-populate replace field")
	d.fixedStrings = fs.BoolP("fixed-strings", "f", false, "Treat pattern literally")
	d.matchWholeWord = fs.BoolP("match-whole-word", "w", false, "Anchor pattern to word boundaries")
	d.caseInsensitive = fs.BoolP("case-insensitive", "c", false, "Case-insensitive match")
	d.advancedRegex = fs.BoolP("advanced-regex", "a", false, "Enable lookaround/backreferences")
	d.multiline = fs.BoolP("multiline", "U", false, "Enable multiline byte-mode search")
	d.interpretEscapes = fs.BoolP("interpret-escape-sequences", "e", false, `Interpret \n \r \t \\ in replacement template`)
	d.hidden = fs.Bool("hidden", false, "Include hidden files")
	d.includeGlobs = fs.String("files-to-include", "", "Comma-separated include globs")
	d.excludeGlobs = fs.String("files-to-exclude", "", "Comma-separated exclude globs")
	d.immediateSearch = fs.BoolP("immediate-search", "X", false, "Skip fields screen; start searching at launch")
	d.noTUI = fs.BoolP("no-tui", "N", false, "Headless mode: run search/replace and print a summary")
	d.configDir = fs.String("config-dir", "", "Override config directory")
	d.dryRun = fs.Bool("dry-run", false, "Compute replacements without writing any files")
	d.maxFileSize = fs.Int64("max-file-size", search.DefaultMaxFileSize, "Maximum file size (bytes) held in memory for multiline search")
	return d
}

func splitGlobList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usageError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func main() {
	fs := pflag.NewFlagSet("scatter", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scatter [flags] [dir]\n\n")
		fs.PrintDefaults()
	}

	ambient := &config.Flags{}
	ambient.DefineFlags(fs)
	domain := defineDomainFlags(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		usageError("%v", err)
	}

	if *ambient.Version {
		fmt.Printf("scatter %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*ambient.ConfigFilePath, *domain.configDir, fs, ambient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	logger.Init(cfg.Logger)
	logger.EnableFilterDebug(*ambient.DebugLog)
	defer logger.Infof("scatter finished")
	logger.Infof("starting scatter %s", version)

	stdinMode := !term.IsTerminal(int(os.Stdin.Fd()))

	if stdinMode {
		if *domain.hidden {
			usageError("Cannot use --hidden flag when processing stdin")
		}
		if *domain.includeGlobs != "" {
			usageError("Cannot use --files-to-include flag when processing stdin")
		}
		if *domain.excludeGlobs != "" {
			usageError("Cannot use --files-to-exclude flag when processing stdin")
		}
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	} else if wd, err := os.Getwd(); err == nil {
		root = wd
	}

	fields := engine.Fields{
		Root:             root,
		SearchText:       *domain.searchText,
		ReplaceText:      *domain.replaceText,
		FixedStrings:     *domain.fixedStrings,
		MatchWholeWord:   *domain.matchWholeWord,
		CaseInsensitive:  *domain.caseInsensitive,
		AdvancedRegex:    *domain.advancedRegex,
		Multiline:        *domain.multiline,
		InterpretEscapes: *domain.interpretEscapes,
		IncludeHidden:    *domain.hidden,
		IncludeGlobs:     splitGlobList(*domain.includeGlobs),
		ExcludeGlobs:     splitGlobList(*domain.excludeGlobs),
	}
	// The config's "search" section defaults fields the CLI flags didn't
	// touch (spec §6); disable_prepopulated_fields turns that off entirely.
	if !cfg.Search.DisablePrepopulatedFields && !fs.Changed("interpret-escape-sequences") {
		fields.InterpretEscapes = cfg.Search.InterpretEscapeSequences
	}

	events := event.NewManager()
	e := engine.New(events)
	e.SetFields(fields)
	e.SetMaxFileSize(*domain.maxFileSize)

	if stdinMode {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
			os.Exit(1)
		}
		e.UseStdin(buf)
	}

	outputIsTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	headless := *domain.noTUI || !outputIsTerminal

	if headless {
		runHeadless(e, events, stdinMode, *domain.dryRun)
		return
	}

	runInteractive(e, events, cfg, *domain.immediateSearch, *domain.configDir)
}

// runHeadless drives the Engine synchronously (spec §6 "Headless
// (--no-tui) output"): perform the search, then the replacement, then
// print the summary lines the spec requires verbatim.
func runHeadless(e *engine.Engine, events *event.Manager, stdinMode, dryRun bool) {
	searchDone := make(chan struct{})
	events.Subscribe(event.TypeSearchCompleted, func(event.Event) bool {
		close(searchDone)
		return false
	})

	e.PerformSearch()
	if snap := e.Snapshot(); snap.CompileErr != nil {
		usageError("%v", snap.CompileErr)
	}
	<-searchDone

	replaceDone := make(chan struct{})
	events.Subscribe(event.TypeReplaceCompleted, func(event.Event) bool {
		close(replaceDone)
		return false
	})
	e.PerformReplacement(dryRun)
	<-replaceDone

	summary := e.Summary()

	if stdinMode {
		os.Stdout.Write(e.StdinResult())
	}

	fmt.Fprintf(os.Stderr, "Successful replacements (lines): %d\n", summary.NumSuccesses)
	fmt.Fprintf(os.Stderr, "Ignored (lines): %d\n", summary.NumIgnored)
	fmt.Fprintf(os.Stderr, "Errors: %d\n", summary.NumErrors)

	if summary.NumErrors > 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

// runInteractive builds the theme/launcher collaborators and hands the
// Engine to the tcell-backed App.
func runInteractive(e *engine.Engine, events *event.Manager, cfg *config.Config, immediateSearch bool, configDirOverride string) {
	themes := theme.NewManagerWithConfigDir(configDirOverride)
	if cfg.Preview.Theme != "" {
		if err := themes.SetTheme(cfg.Preview.Theme); err != nil {
			logger.WarnTagf("theme", "could not select configured theme %q: %v", cfg.Preview.Theme, err)
		}
	}

	launcher := plugin.NewLauncher(cfg.EditorOpen.Command, cfg.EditorOpen.ExitAfterOpen)

	app, err := tui.NewApp(e, events, launcher, themes.Current(), cfg.Keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start terminal UI: %v\n", err)
		os.Exit(1)
	}

	if immediateSearch {
		e.PerformSearch()
	}

	if err := app.Run(); err != nil {
		logger.Errorf("application exited with error: %v", err)
		os.Exit(1)
	}

	// Stdin mode reserves stdout for the TUI; a completed stdin replacement
	// is written to stderr instead (spec §6).
	if e.IsStdinMode() {
		if out := e.StdinResult(); len(out) > 0 {
			os.Stderr.Write(out)
		}
	}
}
