package iscab

import "sync"

// ProgressStage identifies what an extraction run is doing.
type ProgressStage int

const (
	// StageScanning reports the catalog walk before any file work.
	StageScanning ProgressStage = iota
	// StageExtracting reports a compressed file being expanded.
	StageExtracting
	// StageCopyingLoose reports a loose file being copied from the
	// setup root.
	StageCopyingLoose
	// StageSkipping reports a file bypassed without writing.
	StageSkipping
	// StageDone reports the end of the run.
	StageDone
)

// String returns a human-readable stage name.
func (s ProgressStage) String() string {
	switch s {
	case StageScanning:
		return "scanning"
	case StageExtracting:
		return "extracting"
	case StageCopyingLoose:
		return "copying loose"
	case StageSkipping:
		return "skipping"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressEvent is a snapshot of extraction progress. Byte counts use
// the catalog's expanded sizes.
type ProgressEvent struct {
	Stage      ProgressStage
	Path       string
	FilesDone  int
	FilesTotal int
	BytesDone  int64
	BytesTotal int64
}

// ProgressFunc receives progress events during extraction. Calls are
// serialized, including under concurrent workers.
type ProgressFunc func(ProgressEvent)

// progressTracker serializes counter updates and event delivery. A nil
// tracker drops everything.
type progressTracker struct {
	mu         sync.Mutex
	fn         ProgressFunc
	filesDone  int
	filesTotal int
	bytesDone  int64
	bytesTotal int64
}

func newProgressTracker(fn ProgressFunc, files int, bytes int64) *progressTracker {
	if fn == nil {
		return nil
	}
	return &progressTracker{fn: fn, filesTotal: files, bytesTotal: bytes}
}

// emit delivers an event without advancing the counters.
func (p *progressTracker) emit(stage ProgressStage, path string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send(stage, path)
}

// advance counts one finished file and delivers an event.
func (p *progressTracker) advance(stage ProgressStage, path string, bytes int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filesDone++
	p.bytesDone += bytes
	p.send(stage, path)
}

func (p *progressTracker) send(stage ProgressStage, path string) {
	p.fn(ProgressEvent{
		Stage:      stage,
		Path:       path,
		FilesDone:  p.filesDone,
		FilesTotal: p.filesTotal,
		BytesDone:  p.bytesDone,
		BytesTotal: p.bytesTotal,
	})
}
