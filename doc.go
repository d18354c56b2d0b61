// Package notebench is the composition root for the notebench application.
//
// It connects the notes domain (pkg/core) with a store adapter (memory, fs or
// mongo) and an execution model (goroutines or a single-threaded event loop),
// so the same HTTP contract can be served by two backends whose performance
// is then compared by the benchmark harness (pkg/harness).
//
// Usage:
//
//	svc, err := notebench.New(ctx, "./data",
//		notebench.WithAdapter("fs"),
//		notebench.WithLogger(logger),
//	)
//
//	b, exec, err := notebench.NewBackend(ctx, "eventloop", svc, logger)
//	defer exec.Stop(ctx)
//
//	srv := api.NewServer(b, api.Config{Logger: logger})
//	err = srv.ListenAndServe(ctx, ":9000")
package notebench
