package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// rotatingFile is an io.Writer that rotates the underlying file on day
// change or once a per-file line cap is reached, per spec.md §6's logging
// contract. Grounded on nabbar-golib/logger/hookfile.go's mutex-guarded,
// lazily-opened file handle (_HookFile.write/Write), generalized here to
// also roll over on a day boundary and a line-count cap rather than just
// periodic Sync.
type rotatingFile struct {
	mu       sync.Mutex
	basePath string
	maxLines int

	file  *os.File
	day   string
	seq   int
	lines int
}

func newRotatingFile(basePath string, maxLines int) *rotatingFile {
	return &rotatingFile{basePath: basePath, maxLines: maxLines}
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	dayChanged := r.file == nil || today != r.day
	lineCapHit := r.maxLines > 0 && r.lines >= r.maxLines

	if dayChanged || lineCapHit {
		if err := r.rotateLocked(today, dayChanged); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.lines += countNewlines(p)
	return n, err
}

// rotateLocked opens the next file. A day change starts a fresh sequence
// at the base name; a line-cap rotation within the same day must land on a
// distinct path, since reopening basePath.today with O_APPEND would just
// keep writing into the file whose cap was just hit.
func (r *rotatingFile) rotateLocked(today string, dayChanged bool) error {
	if r.file != nil {
		_ = r.file.Close()
	}
	if dayChanged {
		r.seq = 0
	} else {
		r.seq++
	}

	path := fmt.Sprintf("%s.%s", r.basePath, today)
	if r.seq > 0 {
		path = fmt.Sprintf("%s.%d", path, r.seq)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.day = today
	r.lines = 0
	return nil
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

func countNewlines(p []byte) int {
	n := 0
	for _, b := range p {
		if b == '\n' {
			n++
		}
	}
	return n
}
