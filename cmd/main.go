// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"phi-scrub/internal/config"
	"phi-scrub/internal/core"
	"phi-scrub/internal/formatters"
	_ "phi-scrub/internal/formatters/csv"
	_ "phi-scrub/internal/formatters/json"
	_ "phi-scrub/internal/formatters/text"
	_ "phi-scrub/internal/formatters/yaml"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/names"
	"phi-scrub/internal/observability"
	"phi-scrub/internal/parallel"
	"phi-scrub/internal/preprocessors"
	"phi-scrub/internal/redactors"
	"phi-scrub/internal/security"
	"phi-scrub/internal/version"
)

// configFlags holds command line flag values
type configFlags struct {
	mode         string
	outputFormat string
	categories   string
	lookupDir    string
	indexFile    string
	workers      int
	verbose      bool
	debug        bool
	noColor      bool
	showMatch    bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	mode          string
	format        string
	categories    map[string]bool
	lookupDir     string
	indexFile     string
	workers       int
	maxIterations int
	verbose       bool
	debug         bool
	noColor       bool
	showMatch     bool
}

// resolveConfiguration resolves final configuration values from the config
// file (with the active profile already applied) and the flags that were
// set explicitly on the command line.
func resolveConfiguration(cfg *config.Config, flags *configFlags, explicit map[string]bool) (*finalConfiguration, error) {
	final := &finalConfiguration{
		mode:          cfg.Defaults.Mode,
		format:        cfg.Defaults.Format,
		lookupDir:     cfg.Lookup.Dir,
		indexFile:     cfg.Audit.IndexFile,
		workers:       cfg.Defaults.Workers,
		maxIterations: cfg.Engine.MaxContextIterations,
		verbose:       cfg.Defaults.Verbose,
		debug:         cfg.Defaults.Debug,
		noColor:       cfg.Defaults.NoColor,
		showMatch:     cfg.Defaults.ShowMatch,
	}
	categories := cfg.Defaults.Categories

	if explicit["mode"] {
		final.mode = flags.mode
	}
	if explicit["format"] {
		final.format = flags.outputFormat
	}
	if explicit["categories"] {
		categories = flags.categories
	}
	if explicit["lookup-dir"] {
		final.lookupDir = flags.lookupDir
	}
	if explicit["index"] {
		final.indexFile = flags.indexFile
	}
	if explicit["workers"] {
		final.workers = flags.workers
	}
	if explicit["verbose"] {
		final.verbose = flags.verbose
	}
	if explicit["debug"] {
		final.debug = flags.debug
	}
	if explicit["no-color"] {
		final.noColor = flags.noColor
	}
	if explicit["show-match"] {
		final.showMatch = flags.showMatch
	}

	if final.mode == "" {
		final.mode = parallel.ModeAnnotate
	}
	if final.format == "" {
		final.format = "text"
	}
	switch final.mode {
	case parallel.ModeAnnotate, parallel.ModeStructured, parallel.ModeDeidentify:
	default:
		return nil, fmt.Errorf("unknown mode '%s', expected one of %v", final.mode, config.Modes)
	}
	if _, ok := formatters.Get(final.format); !ok {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", final.format, strings.Join(formatters.List(), ", "))
	}
	if final.workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", final.workers)
	}

	list := splitList(categories)
	for _, c := range list {
		if !isKnownCategory(c) {
			return nil, fmt.Errorf("unknown category '%s', expected 'all' or any of %s", c, strings.Join(core.AllCategories, ","))
		}
	}
	final.categories = core.ParseCategories(list)

	return final, nil
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func isKnownCategory(name string) bool {
	if strings.EqualFold(name, "all") {
		return true
	}
	for _, c := range core.AllCategories {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}

// visitedFlags returns the names of the flags set on the command line
func visitedFlags(flagSet *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// collectDocuments turns the input arguments into documents. "-" reads
// standard input; directories are walked for files a preprocessor accepts;
// other arguments that do not exist are treated as glob patterns.
func collectDocuments(args []string, stdin io.Reader, pm *preprocessors.PreprocessorManager) ([]parallel.Document, error) {
	var docs []parallel.Document
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("error reading standard input: %w", err)
			}
			raw := security.NewSecureBuffer(data)
			docs = append(docs, parallel.Document{ID: "stdin", Text: raw.Text()})
			raw.Clear()
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			matches, globErr := filepath.Glob(arg)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("path does not exist or is not accessible: %s", arg)
			}
			for _, m := range matches {
				if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
					docs = append(docs, parallel.Document{Path: m})
				}
			}
			continue
		}

		if info.Mode().IsRegular() {
			docs = append(docs, parallel.Document{Path: arg})
			continue
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path is neither a regular file nor a directory: %s", arg)
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && pm.GetPreprocessor(path) != nil {
				docs = append(docs, parallel.Document{Path: path})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", arg, err)
		}
	}
	return docs, nil
}

// newObserver creates the shared observer: JSON operation records and step
// tracing on stderr in debug mode, warnings only otherwise.
func newObserver(debug bool) *observability.StandardObserver {
	if debug {
		return observability.NewDebugObserver(os.Stderr).StandardObserver
	}
	return observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
}

func loadLists(dir string) (*lookup.Lists, error) {
	if dir == "" {
		return lookup.Load()
	}
	return lookup.LoadDir(dir)
}

// writeOutput writes result to path with owner-only permissions, or to
// stdout when path is empty.
func writeOutput(path, result string) error {
	if path == "" {
		fmt.Println(result)
		return nil
	}
	cleanOutputPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid output file path: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(cleanOutputPath), 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(cleanOutputPath, []byte(result), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("phi-scrub", flag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(flagSet.Output(), "Usage: phi-scrub [flags] file|dir|glob|- ...\n       phi-scrub [flags] -text \"...\"\n\nFlags:\n")
		flagSet.PrintDefaults()
		fmt.Fprintf(flagSet.Output(), "\nFormats:\n  %s\n", strings.Join(formatters.Describe(), "\n  "))
	}

	flags := &configFlags{}
	flagSet.StringVar(&flags.mode, "mode", "", "Output mode: annotate, structured or deidentify (default: annotate)")
	flagSet.StringVar(&flags.outputFormat, "format", "", "Output format: "+strings.Join(formatters.List(), ", ")+" (default: text)")
	flagSet.StringVar(&flags.categories, "categories", "", "Categories to detect: 'all' or a comma-separated list of "+strings.Join(core.AllCategories, ","))
	flagSet.StringVar(&flags.lookupDir, "lookup-dir", "", "Directory with replacement lookup lists (default: embedded lists)")
	flagSet.StringVar(&flags.indexFile, "index", "", "Path to write the de-identification audit log (JSON, deidentify mode)")
	flagSet.IntVar(&flags.workers, "workers", 0, fmt.Sprintf("Number of parallel workers (default: CPU count, at most %d)", parallel.MaxDefaultWorkers))
	flagSet.BoolVar(&flags.verbose, "verbose", false, "Display the annotation table and a summary")
	flagSet.BoolVar(&flags.debug, "debug", false, "Enable debug logging of every pipeline step")
	flagSet.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flagSet.BoolVar(&flags.showMatch, "show-match", false, "Display the matched text in annotation tables")

	firstNames := flagSet.String("first-names", "", "Patient first names, space separated")
	initials := flagSet.String("initials", "", "Patient initials")
	surname := flagSet.String("surname", "", "Patient surname")
	givenName := flagSet.String("given-name", "", "Patient given (calling) name")
	patientID := flagSet.String("patient-id", "", "Patient number to tag wherever it occurs")

	text := flagSet.String("text", "", "Text to process instead of files")
	configFile := flagSet.String("config", "", "Path to configuration file (YAML)")
	profileName := flagSet.String("profile", "", "Profile name to use from config file")
	listProfiles := flagSet.Bool("list-profiles", false, "List available profiles in config file")
	outputFile := flagSet.String("output", "", "Path to output file (if not specified, output to stdout)")
	quiet := flagSet.Bool("quiet", false, "Suppress progress output")
	showVersion := flagSet.Bool("version", false, "Show version information")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		if flags.outputFormat == "json" {
			data, _ := json.MarshalIndent(version.Full(), "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Println(version.Info())
		}
		return nil
	}

	cfg, err := config.LoadConfigOrDefault(*configFile)
	if err != nil {
		if *configFile != "" {
			return fmt.Errorf("error loading config file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
	}

	if *listProfiles {
		for _, name := range cfg.ListProfiles() {
			fmt.Printf("%-16s %s\n", name, cfg.Profiles[name].Description)
		}
		return nil
	}
	if *profileName != "" {
		if err := cfg.ApplyProfile(*profileName); err != nil {
			return err
		}
	}

	final, err := resolveConfiguration(cfg, flags, visitedFlags(flagSet))
	if err != nil {
		return err
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		final.noColor = true
	}
	color.NoColor = final.noColor

	observer := newObserver(final.debug)
	debugObs := observer.DebugObserver
	if debugObs != nil {
		debugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", args))
		debugObs.LogDetail("config", fmt.Sprintf("mode=%s format=%s workers=%d lookup=%q", final.mode, final.format, final.workers, final.lookupDir))
	}

	lists, err := loadLists(final.lookupDir)
	if err != nil {
		return fmt.Errorf("error loading lookup lists: %w", err)
	}
	if debugObs != nil {
		for name, n := range lists.Stats() {
			debugObs.LogMetric("lookup", name, n)
		}
	}

	engine := core.NewEngine(lists, core.EngineConfig{MaxContextIterations: final.maxIterations}, observer)
	pm := preprocessors.NewDefaultManager(observer)

	opts := core.Options{
		Patient: names.Patient{
			FirstNames: *firstNames,
			Initials:   *initials,
			Surname:    *surname,
			GivenName:  *givenName,
		},
		PatientID:  *patientID,
		Categories: final.categories,
	}

	var docs []parallel.Document
	switch {
	case *text != "":
		if flagSet.NArg() > 0 {
			return fmt.Errorf("-text cannot be combined with file arguments")
		}
		docs = []parallel.Document{{ID: "text", Text: *text}}
	case flagSet.NArg() == 0:
		flagSet.Usage()
		return fmt.Errorf("no input: pass files, directories, '-' for standard input, or -text")
	default:
		if docs, err = collectDocuments(flagSet.Args(), os.Stdin, pm); err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no supported files found (supported extensions: %s)", strings.Join(pm.SupportedExtensions(), ", "))
		}
	}
	for i := range docs {
		docs[i].Options = opts
	}

	var auditLogs *redactors.AuditLogManager
	if final.mode == parallel.ModeDeidentify {
		auditLogs = redactors.NewAuditLogManager(version.Short())
	} else if final.indexFile != "" && !*quiet {
		fmt.Fprintf(os.Stderr, "Warning: -index is only used in deidentify mode\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	processor := parallel.NewParallelProcessor(engine, pm, parallel.JobConfig{
		Mode:      final.mode,
		Debug:     final.debug,
		AuditLogs: auditLogs,
	}, final.workers, observer)

	showProgress := isInteractive && !*quiet && len(docs) > 1
	start := time.Now()
	var progress parallel.ProgressCallback
	if showProgress {
		progress = func(completed, total int, _ string) {
			fmt.Fprintf(os.Stderr, "\rProcessed %d/%d documents", completed, total)
		}
	}

	results, stats, err := processor.ProcessDocuments(ctx, docs, progress)
	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}
	if err != nil {
		return fmt.Errorf("processing interrupted: %w", err)
	}
	if debugObs != nil {
		debugObs.LogDetail("main", fmt.Sprintf("Parallel processing: %d documents, %d tags, %d workers, %dms",
			stats.ProcessedDocuments, stats.TotalTags, stats.WorkerCount, stats.TotalDuration.Milliseconds()))
	}

	out := make([]formatters.Document, len(results))
	for i, r := range results {
		out[i] = formatters.Document{
			Path:         r.Path,
			Text:         r.Text,
			Annotated:    r.Annotated,
			Annotations:  r.Annotations,
			Deidentified: r.Deidentified,
			Error:        r.Error,
		}
	}

	result, err := formatters.Export(final.format, out, formatters.FormatterOptions{
		Verbose:   final.verbose,
		NoColor:   final.noColor,
		ShowMatch: final.showMatch,
	})
	if err != nil {
		return fmt.Errorf("error formatting results: %w", err)
	}
	if err := writeOutput(*outputFile, result); err != nil {
		return err
	}

	if auditLogs != nil && final.indexFile != "" {
		if err := auditLogs.SaveAll(final.indexFile); err != nil {
			return fmt.Errorf("failed to export audit log: %w", err)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Audit log exported to: %s\n", final.indexFile)
		}
	}

	if !*quiet && len(docs) > 1 {
		fmt.Fprintf(os.Stderr, "Processing complete: %d documents processed", stats.ProcessedDocuments)
		if stats.FailedDocuments > 0 {
			fmt.Fprintf(os.Stderr, ", %d failed", stats.FailedDocuments)
		}
		fmt.Fprintf(os.Stderr, " in %s\n", time.Since(start).Round(time.Millisecond))
	}

	if stats.FailedDocuments > 0 {
		return fmt.Errorf("%d of %d documents failed", stats.FailedDocuments, stats.TotalDocuments)
	}
	return nil
}
