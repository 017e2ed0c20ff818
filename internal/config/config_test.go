package config

import "testing"

func TestDefault_ProducesUsableValues(t *testing.T) {
	cfg := Default()

	if cfg.Workers <= 0 {
		t.Fatalf("Workers = %d, want > 0", cfg.Workers)
	}
	if cfg.MaxQueued <= 0 {
		t.Fatalf("MaxQueued = %d, want > 0", cfg.MaxQueued)
	}
	if cfg.MaxConnections <= 0 {
		t.Fatalf("MaxConnections = %d, want > 0", cfg.MaxConnections)
	}
	if cfg.ListenBacklog != 5 {
		t.Fatalf("ListenBacklog = %d, want 5 per spec.md §6", cfg.ListenBacklog)
	}
	if cfg.DocRoot == "" {
		t.Fatal("DocRoot should not be empty")
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Workers = 999
	if b.Workers == 999 {
		t.Fatal("Default() results should not share state")
	}
}
