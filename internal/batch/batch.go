// Package batch runs the recognition pipeline over many sheet images
// concurrently.
//
// Every image gets a fully isolated pipeline run, so the pool shares
// nothing between jobs except the output slice, which is the single
// serialized sink. One image failing to decode or resolve never aborts
// its siblings; failures are collected per file alongside the successes.
package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mayankjhn/omr-systemm/internal/enhance"
	"github.com/mayankjhn/omr-systemm/internal/sheet"
)

// imageExtensions is the accepted input file whitelist, lower-cased.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Result is the outcome of one sheet image. Exactly one of Report and Err
// is set.
type Result struct {
	// Filename is the input file's base name.
	Filename string `json:"filename"`

	// Report is the score report; nil when the image failed.
	Report *sheet.Report `json:"report,omitempty"`

	// Overlay is the annotated debug raster, present only when the runner
	// was configured to render overlays and the image succeeded.
	Overlay *image.RGBA `json:"-"`

	// Err is the per-image failure; nil on success.
	Err error `json:"-"`

	// Elapsed is the wall time the pipeline spent on this image.
	Elapsed time.Duration `json:"elapsed"`
}

// Runner processes batches of sheet images against one answer key.
type Runner struct {
	// Workers is the number of concurrent pipeline goroutines. Values
	// below 1 are treated as 1.
	Workers int

	// Layout, Params, Key, and Subjects configure every pipeline run.
	Layout   sheet.Layout
	Params   sheet.Params
	Key      sheet.AnswerKey
	Subjects []sheet.SubjectRange

	// Enhance, when non-nil, applies raster cleanup before recognition.
	Enhance *enhance.Options

	// RenderOverlays requests an annotated debug raster per successful
	// image.
	RenderOverlays bool

	// Progress, when non-nil, is called after each file completes. done
	// counts completed files. Called from worker goroutines; the callback
	// must be safe for concurrent use.
	Progress func(done, total int, filename string)

	// Log receives per-file outcomes. Nil disables logging.
	Log *logrus.Logger
}

// ProcessDir lists the supported image files in dir (sorted by name, not
// recursive) and processes them all.
func (r *Runner) ProcessDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return r.ProcessFiles(ctx, paths)
}

// ProcessFiles runs the pipeline over the given image files using the
// configured worker count. Results are returned in input order. The
// context cancels files not yet started; in-flight pipeline runs finish,
// since no stage is internally interruptible.
func (r *Runner) ProcessFiles(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)

	results := make([]Result, len(paths))
	var done int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := r.processOne(j.path)

				mu.Lock()
				results[j.index] = res
				done++
				completed := done
				mu.Unlock()

				if r.Progress != nil {
					r.Progress(completed, len(paths), res.Filename)
				}
			}
		}()
	}

feed:
	for i, path := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// processOne runs the full pipeline for a single file.
func (r *Runner) processOne(path string) Result {
	start := time.Now()
	res := Result{Filename: filepath.Base(path)}

	defer func() {
		res.Elapsed = time.Since(start)
		if r.Log == nil {
			return
		}
		if res.Err != nil {
			r.Log.WithFields(logrus.Fields{
				"file":  res.Filename,
				"error": res.Err.Error(),
			}).Error("Sheet processing failed")
			return
		}
		r.Log.WithFields(logrus.Fields{
			"file":    res.Filename,
			"correct": res.Report.Correct,
			"total":   res.Report.TotalQuestions,
			"elapsed": res.Elapsed.String(),
		}).Info("Sheet processed")
	}()

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	if err := sheet.ValidateImage(raw, r.Params); err != nil {
		res.Err = err
		return res
	}

	img, err := sheet.DecodeImage(raw)
	if err != nil {
		res.Err = err
		return res
	}
	if r.Enhance != nil {
		img = enhance.Enhance(img, *r.Enhance)
	}

	if r.RenderOverlays {
		report, overlay, err := sheet.ProcessImageWithOverlay(img, r.Key, r.Layout, r.Subjects, r.Params)
		if err != nil {
			res.Err = err
			return res
		}
		res.Report = report
		res.Overlay = overlay
		return res
	}

	report, err := sheet.ProcessImage(img, r.Key, r.Layout, r.Subjects, r.Params)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report

	return res
}
