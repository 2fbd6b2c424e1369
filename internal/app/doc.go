// Package app is postpilot's composition root.
//
// # Overview
//
// Build turns a config.Config into Services: the HTTP transport, the
// automation client, the local cache, the session tracker and the poller.
// Run does the same for the terminal UI, sending logs to the configured file
// because stderr would corrupt the alternate screen.
//
//	Run()
//	  ├─> config.Load()            file, .env, environment
//	  ├─> OpenLogFile()/NewLogger()
//	  ├─> Build()
//	  │     ├─> automation.NewHTTPTransport()
//	  │     ├─> automation.NewClient()
//	  │     ├─> localcache.Open()  degrades to a no-op cache
//	  │     ├─> session.NewTracker()
//	  │     └─> NewPoller()
//	  ├─> go Poller.Run()
//	  └─> ui.Run()                 blocks until quit
//
// # Polling Behavior
//
// The poller fetches status, then generated posts, and applies both to the
// tracker under a ticket taken before the request. While a run is active it
// polls at the configured interval (default 2 seconds). Failures back off
// exponentially from that interval, capped at 30 seconds. Once the backend
// reports no run, the poller sleeps until Wake is called after a start or a
// manual refresh.
//
// Starting a poll cancels the one still in flight. That cancellation is not
// counted as a failure, and any result it might still deliver is discarded
// by the tracker as stale.
package app
