package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	ss "github.com/setanarut/stickerstroke"
	"github.com/setanarut/stickerstroke/utils"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeSquare(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 6; y < 14; y++ {
		for x := 6; x < 14; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	if err := utils.SaveImage(img, path); err != nil {
		t.Fatal(err)
	}
}

func TestPlan(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "b.txt"), "x")
	writeFile(t, filepath.Join(in, "a.png"), "x")
	writeFile(t, filepath.Join(in, ".hidden"), "x")
	if err := os.Mkdir(filepath.Join(in, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	jobs, err := Plan(in, out, utils.FormatJPEG)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []Job{
		{1, filepath.Join(in, "a.png"), filepath.Join(out, "a_1.jpg")},
		{2, filepath.Join(in, "b.txt"), filepath.Join(out, "b_2.jpg")},
	}
	if len(jobs) != len(want) {
		t.Fatalf("jobs = %+v, want %+v", jobs, want)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, jobs[i], want[i])
		}
	}
}

func TestPlanRejectsMissingDirs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "x")

	if _, err := Plan(filepath.Join(dir, "missing"), dir, utils.FormatPNG); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing input: err = %v", err)
	}
	if _, err := Plan(dir, file, utils.FormatPNG); !errors.Is(err, ErrNoDirectory) {
		t.Errorf("file as output: err = %v", err)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeSquare(t, filepath.Join(in, "good.png"))
	writeFile(t, filepath.Join(in, "junk.png"), "not an image")

	jobs, err := Plan(in, out, utils.FormatPNG)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	opt := ss.DefaultOptions()
	opt.CanvasSize = 40
	calls := 0
	r := &Runner{
		Options:  opt,
		Format:   utils.FormatPNG,
		Workers:  2,
		Debug:    true,
		OnResult: func(Result) { calls++ },
	}
	results := r.Run(context.Background(), jobs)

	if calls != len(jobs) {
		t.Errorf("OnResult called %d times, want %d", calls, len(jobs))
	}
	if Failed(results) != 1 {
		t.Fatalf("failed = %d, want 1", Failed(results))
	}
	good, junk := results[0], results[1]
	if good.Err != nil {
		t.Fatalf("good.png: %v", good.Err)
	}
	if junk.Err == nil {
		t.Error("junk.png should fail")
	}
	img, err := utils.ReadImage(good.Dest)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if img.Bounds().Size() != image.Pt(40, 40) {
		t.Errorf("output size = %v, want 40x40", img.Bounds().Size())
	}
	if _, err := os.Stat(filepath.Join(out, "good_1_mask.png")); err != nil {
		t.Errorf("debug mask: %v", err)
	}
}

func TestRunAutoColor(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeSquare(t, filepath.Join(in, "sq.png"))
	jobs, err := Plan(in, out, utils.FormatPNG)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	r := &Runner{Options: ss.DefaultOptions(), AutoColor: true, Format: utils.FormatPNG, Workers: 1}
	results := r.Run(context.Background(), jobs)
	if results[0].Err != nil {
		t.Fatalf("Run: %v", results[0].Err)
	}
	if results[0].Color == (ss.Color{R: 200, G: 30, B: 30}) {
		t.Error("auto color should differ from the image color")
	}
}

func TestRunCanceled(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeSquare(t, filepath.Join(in, "a.png"))
	writeSquare(t, filepath.Join(in, "b.png"))
	jobs, err := Plan(in, out, utils.FormatPNG)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Options: ss.DefaultOptions(), Format: utils.FormatPNG, Workers: 1}
	for _, res := range r.Run(ctx, jobs) {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", res.Source, res.Err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "a_1.png")); !errors.Is(err, os.ErrNotExist) {
		t.Error("canceled run should not write output")
	}
}
