package iscab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/iscab/internal/fileops"
)

type extractConfig struct {
	overwrite bool
	loose     bool
	workers   int
	progress  ProgressFunc
	filter    func(FileDescriptor) bool
}

// ExtractOption configures an extraction run.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite controls whether existing destination files are
// replaced. The default is true; when false, existing files are
// counted as skipped.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithLooseFiles controls whether uncompressed files are copied
// from the setup root. The default is true; when false, loose entries
// are counted as skipped.
func ExtractWithLooseFiles(loose bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.loose = loose
	}
}

// ExtractWithWorkers sets the number of concurrent extraction workers.
// Values below 2 run serially. The report is identical either way.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractWithProgress registers a progress callback.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// ExtractWithFilter limits extraction to entries fn accepts.
func ExtractWithFilter(fn func(FileDescriptor) bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.filter = fn
	}
}

type fileStatus int

const (
	statusExtracted fileStatus = iota
	statusLooseCopied
	statusLooseMissing
	statusSkipped
	statusFailed
)

type fileResult struct {
	path     string
	status   fileStatus
	err      error
	warnings []IntegrityWarning
}

// Extract writes every catalog entry under destDir and returns a
// Report of what happened. Per-file failures, missing loose files, and
// integrity mismatches are recorded in the report; only destination
// setup problems and context cancellation abort the run.
//
// Files are written atomically: a partially extracted file never
// appears at its final path.
func (c *Cabinet) Extract(ctx context.Context, destDir string, opts ...ExtractOption) (*Report, error) {
	cfg := extractConfig{overwrite: true, loose: true, workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	targets := make([]FileDescriptor, 0, len(c.hdr.Files))
	var totalBytes int64
	for _, f := range c.hdr.Files {
		if cfg.filter != nil && !cfg.filter(f) {
			continue
		}
		targets = append(targets, f)
		totalBytes += int64(f.ExpandedSize)
	}

	sink := fileops.NewSink(destDir, fileops.WithOverwrite(cfg.overwrite))
	tracker := newProgressTracker(cfg.progress, len(targets), totalBytes)
	tracker.emit(StageScanning, "")

	results := make([]fileResult, len(targets))
	if cfg.workers < 2 {
		for i, f := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = c.extractOne(f, sink, cfg, tracker)
		}
	} else {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.workers)
		for i, f := range targets {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = c.extractOne(f, sink, cfg, tracker)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	for _, res := range results {
		switch res.status {
		case statusExtracted:
			report.Extracted++
		case statusLooseCopied:
			report.LooseCopied++
		case statusLooseMissing:
			report.LooseMissing++
		case statusSkipped:
			report.Skipped++
		case statusFailed:
			report.Failures = append(report.Failures, FileError{Path: res.path, Err: res.err})
		}
		report.Warnings = append(report.Warnings, res.warnings...)
	}
	report.Elapsed = time.Since(start)

	tracker.emit(StageDone, "")
	return report, nil
}

func (c *Cabinet) extractOne(f FileDescriptor, sink *fileops.Sink, cfg extractConfig, tracker *progressTracker) fileResult {
	path := c.FilePath(f)
	res := fileResult{path: path}
	expanded := int64(f.ExpandedSize)

	if f.Invalid() {
		res.status = statusSkipped
		tracker.advance(StageSkipping, path, expanded)
		return res
	}

	if !fs.ValidPath(path) {
		res.status = statusFailed
		res.err = fmt.Errorf("%w: %q", ErrUnsafePath, path)
		c.log().Error("unsafe archive path", "path", path)
		tracker.advance(StageSkipping, path, expanded)
		return res
	}

	if !sink.ShouldProcess(path) {
		res.status = statusSkipped
		tracker.advance(StageSkipping, path, expanded)
		return res
	}

	if f.Compressed() {
		warnings, err := c.extractCompressed(f, path, sink)
		res.warnings = warnings
		if err != nil {
			res.status = statusFailed
			res.err = err
			c.log().Error("extract failed", "path", path, "error", err)
		} else {
			res.status = statusExtracted
			for _, w := range warnings {
				c.log().Warn("integrity mismatch", "path", path, "kind", w.Kind.String(), "detail", w.Detail)
			}
		}
		tracker.advance(StageExtracting, path, expanded)
		return res
	}

	if !cfg.loose {
		res.status = statusSkipped
		tracker.advance(StageSkipping, path, expanded)
		return res
	}

	if err := c.copyLoose(f, path, sink); err != nil {
		if errors.Is(err, ErrLooseFileMissing) {
			res.status = statusLooseMissing
			c.log().Warn("loose file missing", "path", path)
		} else {
			res.status = statusFailed
			res.err = err
			c.log().Error("loose copy failed", "path", path, "error", err)
		}
	} else {
		res.status = statusLooseCopied
	}
	tracker.advance(StageCopyingLoose, path, expanded)
	return res
}

// extractCompressed expands one chunk stream into the sink and checks
// the result against the catalog's size and checksum. Mismatches are
// warnings, not errors: the file stays written.
func (c *Cabinet) extractCompressed(f FileDescriptor, path string, sink *fileops.Sink) ([]IntegrityWarning, error) {
	cr, err := c.chunkReader(f)
	if err != nil {
		return nil, err
	}
	defer cr.Close() //nolint:errcheck // pool return only

	w, err := sink.Writer(path)
	if err != nil {
		return nil, err
	}

	hr := fileops.NewMD5Reader(cr)
	written, err := io.Copy(w, hr)
	if err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}

	var warnings []IntegrityWarning
	if written != int64(f.ExpandedSize) {
		warnings = append(warnings, IntegrityWarning{
			Path:   path,
			Kind:   IntegritySize,
			Detail: fmt.Sprintf("wrote %d bytes, expected %d", written, f.ExpandedSize),
		})
	}
	if f.HasChecksum() {
		if sum := hr.Sum16(); sum != f.MD5 {
			warnings = append(warnings, IntegrityWarning{
				Path:   path,
				Kind:   IntegrityChecksum,
				Detail: fmt.Sprintf("md5 %x, expected %x", sum, f.MD5),
			})
		}
	}
	return warnings, nil
}

// copyLoose copies one uncompressed file from the setup root into the
// sink.
func (c *Cabinet) copyLoose(f FileDescriptor, path string, sink *fileops.Sink) error {
	if c.setupRoot == "" {
		return fmt.Errorf("%w: %s (no setup root)", ErrLooseFileMissing, path)
	}

	src, err := locateLoose(c.setupRoot, c.dirOf(f), f.Name)
	if err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // resolved under the setup root
	if err != nil {
		return fmt.Errorf("open loose file: %w", err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	w, err := sink.Writer(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("copy loose file: %w", err)
	}
	return w.Commit()
}
