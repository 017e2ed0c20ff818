// Command webserver is the process bootstrap: parse flags, build the
// resolver/queue/pool/reactor stack, install signal handling, run until
// interrupted. Mirrors the original webserver1.1 main()'s argument parsing
// (port, thread count, max queued) and the teacher's flag-driven cmd
// entrypoints (benchstat/main.go).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/zdb1357/webserver/internal/config"
	"github.com/zdb1357/webserver/internal/logging"
	"github.com/zdb1357/webserver/internal/queue"
	"github.com/zdb1357/webserver/internal/reactor"
	"github.com/zdb1357/webserver/internal/workerpool"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()

	port := flag.Int("port", 0, "TCP port to listen on (required)")
	root := flag.String("root", cfg.DocRoot, "document root directory")
	workers := flag.Int("workers", cfg.Workers, "fixed worker pool size")
	maxQueued := flag.Int("queue", cfg.MaxQueued, "maximum pending requests in the task queue")
	logFile := flag.String("log-file", "", "rotate logs to this path instead of stderr")
	logLevel := flag.String("log-level", "info", "minimum log level: debug, info, warn, error")
	flag.Parse()

	if *port <= 0 || *port > 65535 {
		fmt.Fprintf(os.Stderr, "webserver: invalid port %d\n", *port)
		return 1
	}

	cfg.DocRoot = *root
	cfg.Workers = *workers
	cfg.MaxQueued = *maxQueued

	log := logging.New(logging.Config{
		MinLevel: parseLevel(*logLevel),
		FilePath: *logFile,
	})
	defer log.Close()

	// Ignore SIGPIPE: a peer resetting the connection mid-write must
	// surface as EPIPE from write(2), not terminate the process, per
	// spec.md §9 ("the original C++ server... ignores SIGPIPE").
	signal.Ignore(syscall.SIGPIPE)

	q, err := queue.New(cfg.MaxQueued)
	if err != nil {
		log.Errorf("queue init: %v", err)
		return 1
	}

	pool, err := workerpool.New(cfg.Workers, q, log)
	if err != nil {
		log.Errorf("worker pool init: %v", err)
		return 1
	}
	pool.Start()
	defer pool.Stop()

	r, err := reactor.New(cfg, q, log, *port)
	if err != nil {
		log.Errorf("reactor init: %v", err)
		return 1
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Infof("received %s, shutting down", sig)
		r.Stop()
	}()

	log.Infof("listening on :%s, root=%s, workers=%d", strconv.Itoa(*port), cfg.DocRoot, cfg.Workers)
	if err := r.Run(); err != nil {
		log.Errorf("reactor exited: %v", err)
		return 1
	}
	return 0
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.DebugLevel
	case "warn":
		return logging.WarnLevel
	case "error":
		return logging.ErrorLevel
	default:
		return logging.InfoLevel
	}
}
