package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zdb1357/webserver/internal/connstate"
)

func TestResolve_ServesExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.html"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)

	outcome, plan, err := r.Resolve("/hello.html")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeFile {
		t.Fatalf("outcome = %v, want OutcomeFile", outcome)
	}
	if plan.Size != 2 {
		t.Errorf("size = %d, want 2", plan.Size)
	}
	if len(plan.MappedPtr) != 2 || string(plan.MappedPtr) != "hi" {
		t.Errorf("mapped content = %q, want %q", plan.MappedPtr, "hi")
	}
	if err := Unmap(&plan); err != nil {
		t.Errorf("Unmap: %v", err)
	}
	if plan.MappedPtr != nil {
		t.Error("Unmap should clear MappedPtr")
	}
	// Idempotent.
	if err := Unmap(&plan); err != nil {
		t.Errorf("second Unmap: %v", err)
	}
}

func TestResolve_RootMapsToIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	outcome, plan, err := r.Resolve("/")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeFile {
		t.Fatalf("outcome = %v, want OutcomeFile", outcome)
	}
	Unmap(&plan)
}

func TestResolve_MissingFile(t *testing.T) {
	r := New(t.TempDir())
	outcome, _, err := r.Resolve("/nope.html")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeNotFound {
		t.Errorf("outcome = %v, want OutcomeNotFound", outcome)
	}
}

func TestResolve_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	outcome, _, err := r.Resolve("/sub")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeBadRequest {
		t.Errorf("outcome = %v, want OutcomeBadRequest", outcome)
	}
}

func TestResolve_Unreadable(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "secret.html")
	if err := os.WriteFile(p, []byte("s"), 0200); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	outcome, _, err := r.Resolve("/secret.html")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeForbidden {
		t.Errorf("outcome = %v, want OutcomeForbidden", outcome)
	}
}

// TestResolve_PathTraversalRejected exercises the REDESIGN fix (spec.md §9
// open question): a target that climbs above doc_root must never resolve,
// not even onto a file that happens to exist outside it.
func TestResolve_PathTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	outsideDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outsideDir, "passwd"), []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)

	rel, err := filepath.Rel(dir, filepath.Join(outsideDir, "passwd"))
	if err != nil {
		t.Fatal(err)
	}
	outcome, _, err := r.Resolve("/" + rel)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome == connstate.OutcomeFile {
		t.Fatalf("traversal target resolved to a file outside doc_root")
	}
}

func TestResolve_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.html"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	outcome, plan, err := r.Resolve("/empty.html")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != connstate.OutcomeFile {
		t.Fatalf("outcome = %v, want OutcomeFile", outcome)
	}
	if plan.Size != 0 || plan.MappedPtr != nil {
		t.Errorf("empty file should map to a nil region, got size=%d ptr-len=%d", plan.Size, len(plan.MappedPtr))
	}
}
