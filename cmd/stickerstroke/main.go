// Command stickerstroke outlines every image in a directory.
//
//	stickerstroke [flags] <input-dir> <output-dir> [size] [stroke] [format]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/setanarut/stickerstroke/internal/batch"
	"github.com/setanarut/stickerstroke/internal/config"
	"github.com/setanarut/stickerstroke/internal/logging"
	"github.com/setanarut/stickerstroke/utils"
)

const (
	exitOK      = 0
	exitUsage   = 1
	exitPartial = 2
)

// waitForKey is replaced in tests.
var waitForKey = pause

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	// Pause on every exit path, errors included.
	if cfg.Pause {
		defer waitForKey(stdout)
	}
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(stderr, color.RedString("error:"), err)
		}
		return exitUsage
	}

	log := logging.New(cfg.Dev, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	opt, _ := cfg.Options() // validated in parseArgs
	format, _ := utils.ParseFormat(cfg.Format)
	palette, _ := utils.ParsePaletteMethod(cfg.Palette)

	jobs, err := batch.Plan(cfg.Input, cfg.Output, format)
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		log.Error("planning failed", zap.Error(err))
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	r := &batch.Runner{
		Options:   opt,
		AutoColor: cfg.AutoColor(),
		Palette:   palette,
		Format:    format,
		Workers:   cfg.Workers,
		Debug:     cfg.Debug,
		Log:       log,
		OnResult: func(res batch.Result) {
			if res.Err != nil {
				fmt.Fprintf(stdout, "%s %s: %v\n", bad("FAIL"), res.Source, res.Err)
				return
			}
			fmt.Fprintf(stdout, "%s %s\n", ok("done"), res.Dest)
		},
	}
	results := r.Run(ctx, jobs)

	failed := batch.Failed(results)
	summary := fmt.Sprintf("%d of %d images saved to %s", len(results)-failed, len(results), cfg.Output)
	if failed > 0 {
		fmt.Fprintln(stdout, color.YellowString(summary))
		return exitPartial
	}
	fmt.Fprintln(stdout, color.GreenString(summary))
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("stickerstroke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: stickerstroke [flags] <input-dir> <output-dir> [size] [stroke] [format]")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "YAML config file")
	colorFlag := fs.String("color", "", `stroke color: #rrggbb, "r,g,b", a name or "auto"`)
	paletteFlag := fs.String("palette", "", "palette method for auto color: dominantcolor or kmeans")
	padding := fs.Int("padding", 0, "transparent margin around the canvas")
	threshold := fs.Int("threshold", 0, "alpha above this value counts as opaque (0-255)")
	metric := fs.String("metric", "", "distance metric: euclidean, chamfer or manhattan")
	workers := fs.Int("workers", config.DefaultWorkers, "images processed in parallel")
	pauseFlag := fs.Bool("pause", false, "wait for a key press before exiting")
	debug := fs.Bool("debug", false, "also write mask, distance and stroke images")
	logFile := fs.String("log", "", "JSON log file (none by default)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg.Pause = cfg.Pause || *pauseFlag
		return cfg, err
	}

	// Flags given on the command line win over the config file, whatever
	// their value; Validate rejects the bad ones.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "color":
			cfg.Color = *colorFlag
		case "palette":
			cfg.Palette = *paletteFlag
		case "padding":
			cfg.Padding = *padding
		case "threshold":
			cfg.Threshold = *threshold
		case "metric":
			cfg.Metric = *metric
		case "workers":
			cfg.Workers = *workers
		case "pause":
			cfg.Pause = *pauseFlag
		case "debug":
			cfg.Debug = *debug
		case "log":
			cfg.LogFile = *logFile
		}
	})

	pos := fs.Args()
	if len(pos) < 2 && (cfg.Input == "" || cfg.Output == "") {
		fs.Usage()
		return cfg, fmt.Errorf("input and output directories are required")
	}
	if len(pos) >= 2 {
		cfg.Input, cfg.Output = pos[0], pos[1]
	}
	if len(pos) >= 3 {
		if cfg.Size, err = strconv.Atoi(pos[2]); err != nil {
			return cfg, fmt.Errorf("size %q is not a number", pos[2])
		}
	}
	if len(pos) >= 4 {
		if cfg.Stroke, err = strconv.Atoi(pos[3]); err != nil {
			return cfg, fmt.Errorf("stroke %q is not a number", pos[3])
		}
	}
	if len(pos) >= 5 {
		cfg.Format = pos[4]
	}

	return cfg, cfg.Validate()
}

// pause waits for a single key press when stdin is a terminal.
func pause(w io.Writer) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	fmt.Fprint(w, "Press any key to exit...")
	old, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() {
		_ = term.Restore(fd, old)
		fmt.Fprintln(w)
	}()
	var b [1]byte
	_, _ = os.Stdin.Read(b[:])
}
