// Package server hosts the Fiber HTTP service that exposes read-only
// diagnostics for a running module system: registered backends, loaded
// modules, installed finders, and compatibility patches. Route handlers live
// in the routes subpackage; this package only owns the app constructor and
// the request middleware chain.
package server
