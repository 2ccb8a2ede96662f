// Package dev provides hot reload for slate projects.
//
// A Watcher follows the template directories with fsnotify and reports
// debounced changes. A Session ties the watcher to a rebuild function and a
// ReloadServer, which tells connected browsers to reload over a WebSocket or
// shows the rebuild error in an overlay.
//
// # Usage
//
//	reload := dev.NewReloadServer()
//	session := &dev.Session{
//	    Watcher: dev.NewWatcher(dev.WatcherConfig{Paths: cfg.WatchPaths()}),
//	    Reload:  reload,
//	    Rebuild: func(ctx context.Context) error { return site.Reload(ctx) },
//	}
//	go session.Run(ctx)
//
//	mux.Handle(dev.ReloadPath, reload)
//
// Pages opt into reloading by wrapping their content with WithClient, which
// appends the client script to the end of the document body.
package dev
