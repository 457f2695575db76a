package status

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// State is the condition of one expected artifact.
type State string

const (
	StateMissing  State = "missing"
	StateStale    State = "stale"
	StateRendered State = "rendered"
)

// Artifact describes one expected output file.
type Artifact struct {
	File    string
	Path    string
	State   State
	Size    int64
	ModTime time.Time
}

// Report holds the status of every expected artifact in an output directory.
type Report struct {
	Dir       string
	Artifacts []Artifact
	// Inputs is the newest modification time among the sources the
	// artifacts were rendered from. Zero when every source is built in.
	Inputs time.Time
}

// Complete reports whether every artifact is rendered and fresh.
func (r Report) Complete() bool {
	for _, a := range r.Artifacts {
		if a.State != StateRendered {
			return false
		}
	}
	return true
}

// Count returns how many artifacts are in state s.
func (r Report) Count(s State) int {
	n := 0
	for _, a := range r.Artifacts {
		if a.State == s {
			n++
		}
	}
	return n
}

// Scan checks which of files exist in dir. A file older than any of inputs is
// stale. Inputs may name files or directories; directories are walked and
// missing inputs are ignored.
func Scan(dir string, files []string, inputs ...string) Report {
	r := Report{Dir: dir, Inputs: NewestModTime(inputs...)}
	for _, name := range files {
		a := Artifact{File: name, Path: filepath.Join(dir, name), State: StateMissing}
		if info, err := os.Stat(a.Path); err == nil && !info.IsDir() {
			a.Size = info.Size()
			a.ModTime = info.ModTime()
			a.State = StateRendered
			if a.ModTime.Before(r.Inputs) {
				a.State = StateStale
			}
		}
		r.Artifacts = append(r.Artifacts, a)
	}
	return r
}

// NewestModTime returns the latest modification time among the regular files
// in paths, descending into directories.
func NewestModTime(paths ...string) time.Time {
	var newest time.Time
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil // skip unreadable paths
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
			return nil
		})
	}
	return newest
}
