package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/rusq/maxlines"
	"github.com/rusq/maxlines/internal/config"
	"github.com/rusq/maxlines/internal/emit"
	"github.com/rusq/maxlines/internal/input"
	"github.com/rusq/maxlines/internal/run"
)

var errStdinTerminal = errors.New("no input files and stdin is a terminal")

type rootOptions struct {
	configPath string
	debug      bool
	summary    bool
	// flags holds the flag values, only the ones set on the command line
	// override the config file.
	flags config.Config
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "maxlines [flags] [file ...]",
		Short:        "Read files in batches of lines",
		Long:         "maxlines reads the files (or stdin) in batches of up to --max-lines lines.",
		Version:      version,
		Example:      rootCmdExample,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, &opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.configPath, "config", "", "config file `path`")
	fl.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	fl.BoolVar(&opts.summary, "summary", false, "print a summary to stderr when done")
	fl.IntVarP(&opts.flags.MaxLines, "max-lines", "n", config.DefaultMaxLines, "maximum number of lines per batch")
	fl.IntVar(&opts.flags.BufferSize, "buffer-size", config.DefaultBufferSize, "read buffer size in bytes")
	fl.IntVar(&opts.flags.MaxErrors, "max-errors", config.DefaultMaxErrors, "abandon an input after this many consecutive read errors, 0 to never")
	fl.IntVarP(&opts.flags.Concurrency, "concurrency", "j", config.DefaultConcurrency, "number of inputs read in parallel")
	fl.StringVar(&opts.flags.Format, "format", config.FormatNDJSON, "output format: ndjson or text")
	fl.StringVar(&opts.flags.Compression, "compression", input.CompressionAuto, "input compression: auto, none, zstd or gzip")
	fl.StringVar(&opts.flags.Encoding, "encoding", "", "input text encoding, i.e. windows-1251 or utf-16le")
	fl.BoolVar(&opts.flags.ValidateUTF8, "validate-utf8", false, "fail lines that are not valid UTF-8")
	fl.StringVar(&opts.flags.LogLevel, "log-level", config.DefaultLogLevel, "log level")

	return cmd
}

const rootCmdExample = `  # batches of 500 lines from a compressed log
  maxlines -n 500 app.log.zst

  # several files at once, plain text output
  maxlines -j 4 --format text *.log

  # from stdin, in a legacy encoding
  cat old.txt | maxlines --encoding windows-1251`

func runRoot(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), cfg, &opts.flags)
	if opts.debug {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	if len(args) == 0 {
		if isTerminal(cmd.InOrStdin()) {
			return errStdinTerminal
		}
		args = []string{input.Stdin}
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	inOpts := cfg.InputOptions()
	inOpts.Stdin = cmd.InOrStdin()

	r := &run.Runner{
		Open: func(name string) (io.ReadCloser, error) {
			return input.Open(name, inOpts)
		},
		NewReader:   readerFactory(cfg),
		Emitter:     newEmitter(cfg.Format, out),
		MaxErrors:   cfg.MaxErrors,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Debug().Strs("inputs", args).Int("max_lines", cfg.MaxLines).Msg("starting")
	stats, err := r.Run(ctx, args)
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if opts.summary {
		printSummary(cmd.ErrOrStderr(), stats, isTerminal(cmd.ErrOrStderr()))
	}
	return err
}

// applyFlags copies the flags set on the command line into cfg.
func applyFlags(fl *pflag.FlagSet, cfg *config.Config, flags *config.Config) {
	fl.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "max-lines":
			cfg.MaxLines = flags.MaxLines
		case "buffer-size":
			cfg.BufferSize = flags.BufferSize
		case "max-errors":
			cfg.MaxErrors = flags.MaxErrors
		case "concurrency":
			cfg.Concurrency = flags.Concurrency
		case "format":
			cfg.Format = flags.Format
		case "compression":
			cfg.Compression = flags.Compression
		case "encoding":
			cfg.Encoding = flags.Encoding
		case "validate-utf8":
			cfg.ValidateUTF8 = flags.ValidateUTF8
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		}
	})
}

func readerFactory(cfg *config.Config) func(io.Reader) *maxlines.Reader {
	return func(r io.Reader) *maxlines.Reader {
		var src maxlines.Source
		if cfg.BufferSize > 0 {
			src = maxlines.NewSourceSize(r, cfg.BufferSize)
		} else {
			src = maxlines.NewSource(r)
		}
		if cfg.ValidateUTF8 {
			src = maxlines.ValidUTF8(src)
		}
		return maxlines.New(src, cfg.MaxLines)
	}
}

func newEmitter(format string, w io.Writer) emit.Emitter {
	if format == config.FormatText {
		return emit.NewText(w)
	}
	return emit.NewNDJSON(w)
}

// newLogger returns the console logger.  An unknown level falls back to
// info.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
