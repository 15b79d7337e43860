// Package batch converts many bitmaps concurrently, isolating per-file
// failures.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roboco-io/bmp2yuv/internal/bmp"
	"github.com/roboco-io/bmp2yuv/internal/source"
	"github.com/roboco-io/bmp2yuv/internal/yuv"
)

// OutputExtension is appended to every output file name.
const OutputExtension = ".yuv"

// Job is one conversion: an input item and the path its output goes to.
type Job struct {
	Item   source.Item
	Output string
}

// Result is the outcome of a job.
type Result struct {
	Job      Job
	Header   *bmp.Header // nil if the header could not be read
	Bytes    int64       // bytes written to the output file
	Duration time.Duration
	Err      error
}

// OK returns true if the job succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Plan derives one job per item. Output names are "<stem>.yuv" inside
// outDir; Run fails any job whose output path repeats an earlier one.
func Plan(items []source.Item, outDir string) []Job {
	jobs := make([]Job, 0, len(items))
	for _, it := range items {
		jobs = append(jobs, Job{
			Item:   it,
			Output: OutputPath(outDir, it),
		})
	}
	return jobs
}

// OutputPath returns the output file path for item inside outDir.
func OutputPath(outDir string, item source.Item) string {
	return filepath.Join(outDir, item.Stem()+OutputExtension)
}

// Observer receives a result as soon as its job finishes. Calls are
// serialized.
type Observer func(Result)

// Runner converts jobs with a bounded number of workers.
type Runner struct {
	Workers  int // <= 0 means runtime.NumCPU()
	Options  yuv.Options
	Observer Observer

	// Trace, if set, returns the first-row observer for a job and
	// overrides Options.Trace.
	Trace func(Job) yuv.TraceFunc
}

// NewRunner creates a runner with the given converter options.
func NewRunner(workers int, opts yuv.Options) *Runner {
	return &Runner{
		Workers: workers,
		Options: opts,
	}
}

// Run converts all jobs and returns their results in job order. A failing
// job does not stop the others. When ctx is cancelled, jobs that have not
// started fail with the context error.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	seen := make(map[string]int, len(jobs))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	notify := make(chan Result)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range notify {
			if r.Observer != nil {
				r.Observer(res)
			}
		}
	}()

	g := &errgroup.Group{}
	g.SetLimit(workers)

	for i, job := range jobs {
		if first, dup := seen[job.Output]; dup {
			results[i] = Result{
				Job: job,
				Err: fmt.Errorf("output %s already produced by %s", job.Output, jobs[first].Item.Name),
			}
			notify <- results[i]
			continue
		}
		seen[job.Output] = i

		if err := ctx.Err(); err != nil {
			results[i] = Result{Job: job, Err: err}
			notify <- results[i]
			continue
		}

		i, job := i, job
		g.Go(func() error {
			res := Result{Job: job}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res = r.convert(job)
			}
			results[i] = res
			notify <- res
			return nil
		})
	}

	g.Wait()
	close(notify)
	<-done

	return results
}

// convert runs one job, writing to a temp file that is renamed into place
// only on success.
func (r *Runner) convert(job Job) (res Result) {
	res.Job = job
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	in, err := job.Item.Open()
	if err != nil {
		res.Err = fmt.Errorf("%w: open input: %w", bmp.ErrIO, err)
		return res
	}
	defer in.Close()

	dir := filepath.Dir(job.Output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(job.Output)+".*.tmp")
	if err != nil {
		res.Err = fmt.Errorf("%w: create output: %w", bmp.ErrIO, err)
		return res
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	opts := r.Options
	if r.Trace != nil {
		opts.Trace = r.Trace(job)
	}

	h, err := yuv.NewConverter(opts).Convert(tmp, in)
	res.Header = h
	if err != nil {
		res.Err = err
		return res
	}

	res.Bytes = int64(h.OutputSize())

	if err := tmp.Close(); err != nil {
		res.Err = fmt.Errorf("%w: close output: %w", bmp.ErrIO, err)
		return res
	}
	if err := os.Rename(tmp.Name(), job.Output); err != nil {
		os.Remove(tmp.Name())
		committed = true
		res.Err = fmt.Errorf("%w: rename output: %w", bmp.ErrIO, err)
		return res
	}
	committed = true
	return res
}

// Failed returns the failed results.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// ErrPartialFailure is returned by Err when some jobs failed.
var ErrPartialFailure = errors.New("some files failed to convert")

// Err summarizes results as a single error, or nil if all jobs succeeded.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrPartialFailure, len(failed), len(results))
}
