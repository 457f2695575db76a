package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Job produces one output file.
type Job struct {
	// File is the name written under the output directory.
	File string
	// Render builds the file content.
	Render func(ctx context.Context) ([]byte, error)
}

// Result is the outcome of one Job.
type Result struct {
	File  string
	Path  string
	Bytes int
	Err   error
}

// Progress is called as each job finishes. It may be invoked concurrently.
type Progress func(Result)

// WriteAll renders the jobs concurrently and writes each into dir, creating
// it if needed. The first failure cancels the jobs still running. Every
// result is returned in job order alongside the first error.
func WriteAll(ctx context.Context, dir string, jobs []Job, onDone Progress) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		g.Go(func() error {
			res := Result{File: job.File, Path: filepath.Join(dir, job.File)}
			err := runJob(gctx, job, res.Path, &res)
			res.Err = err
			results[i] = res
			if onDone != nil {
				onDone(res)
			}
			return err
		})
	}

	err := g.Wait()
	return results, err
}

func runJob(ctx context.Context, job Job, path string, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := job.Render(ctx)
	if err != nil {
		return fmt.Errorf("render %s: %w", job.File, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", job.File, err)
	}
	res.Bytes = len(data)
	return nil
}
