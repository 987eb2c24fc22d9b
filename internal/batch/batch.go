// Package batch runs the sticker pipeline over every image in a directory.
// A failing file is recorded and skipped; it never stops the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ss "github.com/setanarut/stickerstroke"
	"github.com/setanarut/stickerstroke/utils"
)

var ErrNoDirectory = errors.New("not a directory")

// Job is one input file and the output path it maps to.
type Job struct {
	Seq    int
	Source string
	Dest   string
}

type Result struct {
	Job
	Color   ss.Color
	Elapsed time.Duration
	Err     error
}

// CheckDir fails unless path exists and is a directory.
func CheckDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNoDirectory)
	}
	return nil
}

// Plan lists the regular files of inputDir in name order and numbers them
// from 1. Hidden files and subdirectories are skipped.
func Plan(inputDir, outputDir string, format utils.Format) ([]Job, error) {
	if err := CheckDir(inputDir); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if err := CheckDir(outputDir); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		seq := len(jobs) + 1
		jobs = append(jobs, Job{
			Seq:    seq,
			Source: filepath.Join(inputDir, e.Name()),
			Dest:   filepath.Join(outputDir, utils.OutputName(e.Name(), seq, format)),
		})
	}
	return jobs, nil
}

// Runner processes jobs with up to Workers files in flight.
type Runner struct {
	Options   ss.Options
	AutoColor bool
	Palette   utils.PaletteMethod
	Format    utils.Format
	Workers   int
	Debug     bool
	Log       *zap.Logger
	// OnResult, if set, is called once per finished job. Calls are serialized.
	OnResult func(Result)
}

// Run processes every job and returns the results in job order. Jobs not
// started before ctx is canceled carry ctx.Err().
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", uuid.NewString()))
	log.Info("batch started", zap.Int("files", len(jobs)), zap.Int("workers", r.Workers))

	results := make([]Result, len(jobs))
	var mu sync.Mutex
	report := func(i int, res Result) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = res
		if r.OnResult != nil {
			r.OnResult(res)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Workers))
	for i, job := range jobs {
		if err := gctx.Err(); err != nil {
			report(i, Result{Job: job, Err: err})
			continue
		}
		g.Go(func() error {
			start := time.Now()
			col, err := r.process(job)
			res := Result{Job: job, Color: col, Elapsed: time.Since(start), Err: err}
			if err != nil {
				log.Warn("file failed", zap.String("source", job.Source), zap.Error(err))
			} else {
				log.Debug("file done",
					zap.String("source", job.Source),
					zap.String("dest", job.Dest),
					zap.String("color", col.Hex()),
					zap.Duration("elapsed", res.Elapsed))
			}
			report(i, res)
			// Per-file failures are isolated; never cancel the group.
			return nil
		})
	}
	_ = g.Wait()

	log.Info("batch finished", zap.Int("files", len(jobs)), zap.Int("failed", Failed(results)))
	return results
}

func (r *Runner) process(job Job) (ss.Color, error) {
	img, err := utils.ReadImage(job.Source)
	if err != nil {
		return ss.Color{}, err
	}
	opt := r.Options
	if r.AutoColor {
		opt.Color = utils.AutoStrokeColor(img, r.Palette)
	}
	sb := ss.NewStickerBuilder(img)
	if err := sb.Build(opt); err != nil {
		return opt.Color, fmt.Errorf("%s: %w", filepath.Base(job.Source), err)
	}
	if err := utils.SaveImageAs(sb.Result(), job.Dest, r.Format); err != nil {
		return opt.Color, err
	}
	if r.Debug {
		stem := strings.TrimSuffix(filepath.Base(job.Dest), filepath.Ext(job.Dest))
		if err := utils.SaveDebugImages(sb, opt.Color, filepath.Dir(job.Dest), stem); err != nil {
			return opt.Color, err
		}
	}
	return opt.Color, nil
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
