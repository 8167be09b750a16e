// Package export writes the files an agent created into a local directory and
// records them as a git commit.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
)

// Options controls the commit.
type Options struct {
	Message     string
	AuthorName  string
	AuthorEmail string
	// When defaults to time.Now.
	When time.Time
}

// Result describes a finished export.
type Result struct {
	Dir     string
	Files   []string // paths relative to Dir
	Commit  string
	Created bool // repository was initialised by this export
}

// ErrNothingToExport is returned when files is empty.
var ErrNothingToExport = errors.New("export: no files")

// Export saves files under dir, initialising a git repository there if none
// exists, stages them and commits.
func Export(dir string, files []attachments.File, opts Options, log *zap.Logger) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNothingToExport
	}
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("export: resolve %q: %w", dir, err)
	}

	repo, created, err := openOrInit(abs)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("export: worktree: %w", err)
	}

	res := &Result{Dir: abs, Created: created}
	for i, f := range files {
		path, err := attachments.Save(abs, f, i)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		rel = filepath.ToSlash(rel)
		if _, err := wt.Add(rel); err != nil {
			return nil, fmt.Errorf("export: stage %s: %w", rel, err)
		}
		res.Files = append(res.Files, rel)
	}

	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}
	msg := opts.Message
	if msg == "" {
		msg = fmt.Sprintf("Export %d generated file(s)", len(files))
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  orDefault(opts.AuthorName, "osa-builder"),
			Email: orDefault(opts.AuthorEmail, "osa-builder@localhost"),
			When:  when,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("export: commit: %w", err)
	}
	res.Commit = hash.String()

	log.Info("exported files",
		zap.String("dir", abs),
		zap.Int("files", len(res.Files)),
		zap.String("commit", res.Commit),
		zap.Bool("new_repo", created))
	return res, nil
}

func openOrInit(dir string) (*git.Repository, bool, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, false, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, false, fmt.Errorf("export: open repo: %w", err)
	}
	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, false, fmt.Errorf("export: init repo: %w", err)
	}
	return repo, true, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
