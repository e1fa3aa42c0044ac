// Package server serves a requery app to browsers and keeps every rendered
// page live.
//
// Each page request creates a Session: a fresh document parsed from the
// app template, its own rq.Registry with the app mounted, and a collector
// that turns document mutations into patches. The page is rendered with a
// data-rq-id attribute on every element and a small client script that
// connects back over a WebSocket.
//
// # Event Processing
//
// When a client sends an event:
//  1. The read loop decodes the JSON frame
//  2. The target element is found by id; form values are applied first
//  3. The event is dispatched on the session document, running handlers
//  4. Pending list passes are flushed
//  5. Collected mutations become patches and are queued for the write loop
//
// # Routes
//
//	GET /              render a new session of the app
//	GET /ws            WebSocket for ?session=<id>
//	GET /rq/client.js  browser client
//	GET /healthz       liveness and session count
//	GET /metrics       prometheus metrics (configurable path)
//
// # Example Usage
//
//	srv := server.New(app, &server.Config{Address: ":8080"},
//	    server.WithLogger(logger))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The engine is single-threaded per document. Each session serializes
// rendering and event handling behind its own mutex; only the write loop
// writes to a connection.
package server
