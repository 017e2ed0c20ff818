// Package config holds the server's resolved configuration, populated by
// cmd/webserver from command-line flags. Defaults follow the teacher's
// DefaultConfig idiom (shockwave/pkg/shockwave/server/server.go).
package config

// Config is the resolved set of knobs the reactor, queue, and worker pool
// are constructed from.
type Config struct {
	// DocRoot is the fixed absolute filesystem prefix prepended to every
	// request target (spec.md §6).
	DocRoot string

	// Workers is the worker pool's fixed thread count (spec.md's
	// thread_number).
	Workers int

	// MaxQueued is the bounded task queue's capacity (spec.md's
	// max_requests).
	MaxQueued int

	// MaxConnections bounds total concurrent connections (spec.md's
	// MAX_FD); beyond this, new accepts are closed immediately.
	MaxConnections int

	// ListenBacklog is the listen(2) backlog, fixed at 5 per spec.md §6.
	ListenBacklog int
}

// Default returns the default configuration. The listen port itself is not
// part of Config: it is passed directly to reactor.New (cmd/webserver's
// -port flag), since tests construct reactors on an ephemeral port (0)
// without needing a throwaway Config to carry it.
func Default() Config {
	return Config{
		DocRoot:        "/var/www",
		Workers:        8,
		MaxQueued:      10000,
		MaxConnections: 65536,
		ListenBacklog:  5,
	}
}
