package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pdf2tree/go/internal/config"
	"github.com/pdf2tree/go/internal/extractor"
	"github.com/pdf2tree/go/internal/logger"
	"github.com/pdf2tree/go/internal/server"
)

var Logger = logger.GetLogger("pdf2tree")

const usage = `Usage:
  pdf2tree [flags] <input.pdf> [output.json]
  pdf2tree serve [flags]

Flags:
`

type options struct {
	cfg    config.Config
	input  string
	output string
	serve  bool
}

func parseArgs(args []string) (options, error) {
	var opts options
	if len(args) > 0 && args[0] == "serve" {
		opts.serve, args = true, args[1:]
	}

	fs := flag.NewFlagSet("pdf2tree", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	def := config.Default()
	cfgPath := fs.String("config", "", "YAML config file")
	stroke := fs.Float64("max-stroke-width", def.MaxStrokeWidth, "thickness below which a filled rectangle is a line")
	gap := fs.Float64("max-gap-width", def.MaxGapWidth, "distance within which lines still touch")
	workers := fs.Int("workers", def.Workers, "pages processed at once")
	addr := fs.String("addr", def.Addr, "listen address for serve")
	clean := fs.Bool("clean-text", def.CleanText, "normalize whitespace and unicode in fragment text")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.cfg = def
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			return opts, err
		}
		opts.cfg = cfg
	}
	// explicit flags win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-stroke-width":
			opts.cfg.MaxStrokeWidth = *stroke
		case "max-gap-width":
			opts.cfg.MaxGapWidth = *gap
		case "workers":
			opts.cfg.Workers = *workers
		case "addr":
			opts.cfg.Addr = *addr
		case "clean-text":
			opts.cfg.CleanText = *clean
		}
	})
	if err := opts.cfg.Validate(); err != nil {
		return opts, err
	}

	if opts.serve {
		return opts, nil
	}
	switch fs.NArg() {
	case 2:
		opts.output = fs.Arg(1)
		fallthrough
	case 1:
		opts.input = fs.Arg(0)
	default:
		fs.Usage()
		return opts, errors.New("pdf2tree: expected an input file")
	}
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		Logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		err = server.New(opts.cfg).ListenAndServe(ctx)
	} else {
		err = convert(ctx, opts)
	}
	if err != nil {
		Logger.Error("failed", "error", err)
		os.Exit(1)
	}
}

func convert(ctx context.Context, opts options) error {
	start := time.Now()
	Logger.Info("beginning conversion...")
	Logger.Debug("paths", "pdf", opts.input, "output", opts.output)

	res, err := extractor.ProcessFile(ctx, opts.input, opts.cfg)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := write(out, res); err != nil {
		return err
	}

	Logger.Info("total conversion time", "totalTime", time.Since(start))
	return nil
}

func write(out io.Writer, res *extractor.Result) error {
	w := bufio.NewWriterSize(out, 256*1024)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return w.Flush()
}
