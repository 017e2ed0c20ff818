// Package resource implements do_request: resolving a parsed GET target to
// an absolute path under doc_root, stat'ing it, and memory-mapping the file
// for zero-copy transmission. Grounded on the original do_request (stat +
// S_IROTH + S_ISDIR + mmap(MAP_PRIVATE, PROT_READ)) and on the teacher's
// mmap/sendfile discipline of closing the fd immediately after mapping
// (shockwave/pkg/shockwave/socket/sendfile_linux.go keeps the mapping, not
// the fd, alive).
package resource

import (
	"os"
	"path"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/zdb1357/webserver/internal/connstate"
)

// Resolver resolves request targets against a fixed document root.
type Resolver struct {
	DocRoot string
}

// New constructs a Resolver rooted at docRoot.
func New(docRoot string) *Resolver {
	return &Resolver{DocRoot: strings.TrimRight(docRoot, "/")}
}

// Resolve is do_request: given a parsed request target, it normalizes,
// stats, opens, and mmaps the file (REDESIGN per spec.md §9's
// path-traversal open question: the original C++ server concatenates the
// target onto doc_root unsanitized; this rewrite rejects any normalized
// path that escapes doc_root instead of serving it). It is called from
// Connection.Process, on the worker goroutine — never from the reactor's
// Read — since stat/open/mmap are the blocking filesystem work spec.md
// §4.3/§5 keep off the single reactor thread.
func (r *Resolver) Resolve(target string) (connstate.Outcome, connstate.FilePlan, error) {
	// Clean the target as a relative path: a rooted Clean silently drops
	// ".." elements that would climb past "/", while a relative Clean keeps
	// them at the front, so a target that climbs above doc_root is still
	// visible here.
	rel := path.Clean(strings.TrimLeft(target, "/"))
	if strings.Contains(rel, "..") {
		return connstate.OutcomeBadRequest, connstate.FilePlan{}, nil
	}
	clean := path.Clean("/" + rel)
	if clean == "/" {
		clean = "/index.html"
	}

	full := r.DocRoot + clean
	if len(full) > connstate.FilenameLen {
		return connstate.OutcomeBadRequest, connstate.FilePlan{}, nil
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return connstate.OutcomeNotFound, connstate.FilePlan{}, nil
		}
		return connstate.OutcomeInternalError, connstate.FilePlan{}, err
	}
	if info.IsDir() {
		return connstate.OutcomeBadRequest, connstate.FilePlan{}, nil
	}
	if info.Mode().Perm()&0004 == 0 {
		return connstate.OutcomeForbidden, connstate.FilePlan{}, nil
	}

	f, err := os.Open(full)
	if err != nil {
		return connstate.OutcomeInternalError, connstate.FilePlan{}, err
	}
	defer f.Close()

	size := info.Size()
	var mapped []byte
	if size > 0 {
		mapped, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
		if err != nil {
			return connstate.OutcomeInternalError, connstate.FilePlan{}, err
		}
	}

	plan := connstate.FilePlan{
		Path:      full,
		Size:      size,
		Mode:      uint32(info.Mode().Perm()),
		MappedPtr: mapped,
	}
	return connstate.OutcomeFile, plan, nil
}

// Unmap releases a file plan's mapping. Idempotent: a nil MappedPtr (an
// empty file, or a plan already unmapped) is a no-op, matching spec.md
// §4.5's double-unmap-is-a-no-op requirement.
func Unmap(plan *connstate.FilePlan) error {
	if plan.MappedPtr == nil {
		return nil
	}
	err := unix.Munmap(plan.MappedPtr)
	plan.MappedPtr = nil
	return err
}
