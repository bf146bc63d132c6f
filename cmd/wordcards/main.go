// Package main implements the wordcards command line tool, which turns a
// word list into a flashcard deck.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/events"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/platform/logger"
	"github.com/phrazzld/wordcards/internal/service"
	"github.com/phrazzld/wordcards/internal/wordlist"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitAllFailed  = 2
	exitUsageError = 64
)

// options holds the parsed command line.
type options struct {
	configPath string
	words      string
	input      string
	format     string
	out        string
	deck       string
	allowEmpty bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("wordcards", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&opts.words, "words", "", "comma-separated words")
	fs.StringVar(&opts.input, "input", "", "word list file (.txt, .csv or .json)")
	fs.StringVar(&opts.format, "format", "", "output format: apkg, csv or markdown")
	fs.StringVar(&opts.out, "out", "", "output file; defaults to a timestamped name in export.output_dir")
	fs.StringVar(&opts.deck, "deck", "", "deck name")
	fs.BoolVar(&opts.allowEmpty, "allow-empty", false, "write a deck even when no word succeeded")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	// Bare arguments are words too
	if rest := fs.Args(); len(rest) > 0 {
		opts.words = strings.Join(append([]string{opts.words}, rest...), ",")
	}
	return opts, nil
}

// run executes one generation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsageError
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	// Logs go to stderr so stdout carries only the progress and summary
	l, err := logger.SetupWriter(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to set up logger: %v\n", err)
		return exitError
	}

	words, err := collectWords(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	if len(words) == 0 {
		fmt.Fprintln(stderr, "error: no words given; use -words or -input")
		return exitUsageError
	}

	format, err := export.ParseFormat(firstNonEmpty(opts.format, cfg.Export.Format))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	emitter := events.NewInMemoryEventEmitter(l)
	emitter.RegisterHandler(&progressPrinter{out: stdout})

	svc, err := service.NewServices(ctx, cfg, emitter, l)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	_, summary, runErr := svc.Orchestrator.Run(ctx, words, svc.Params)
	if summary == nil {
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return exitError
	}
	printSummary(stdout, summary)

	out := opts.out
	if out == "" {
		out = filepath.Join(cfg.Export.OutputDir, export.FileName(format, time.Now()))
	}
	deck, err := svc.Decks.ExportFile(ctx, summary, service.DeckRequest{
		Name:        firstNonEmpty(opts.deck, cfg.Export.DeckName),
		Description: cfg.Export.DeckDescription,
		Format:      format,
		AllowEmpty:  opts.allowEmpty || cfg.Export.AllowEmpty,
	}, out)

	switch {
	case errors.Is(err, domain.ErrEmptyDeck):
		fmt.Fprintln(stderr, "error: every word failed; no deck written (use -allow-empty to write one anyway)")
		return exitAllFailed
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "Wrote %d cards to %s\n", deck.Len(), out)

	if runErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return exitError
	}
	if summary.Succeeded == 0 {
		return exitAllFailed
	}
	return exitOK
}

// collectWords joins the -words list and the -input file, in that order.
// Both are cleaned by the orchestrator.
func collectWords(opts options) ([]string, error) {
	var words []string
	for _, w := range strings.Split(opts.words, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	if opts.input != "" {
		imported, err := wordlist.Import(opts.input, nil)
		if err != nil {
			return nil, err
		}
		words = append(words, imported...)
	}
	return words, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
