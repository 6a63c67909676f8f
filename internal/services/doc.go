// Package services starts and supervises the dependent services a test
// environment needs before the test command runs, typically a database and
// the application server.
//
// # Core Concepts
//
// Service: one manageable external process with lifecycle methods and
// state reporting. ProcessService is the exec-based implementation; it runs
// the process in its own process group, redirects stdout/stderr to a
// console log under the destination directory, and waits for the
// configured readiness probes.
//
// Orchestrator: starts services strictly in configuration order. A service
// must reach readiness before the next one starts, so ordering constraints
// (database before application server) are expressed by list order alone.
// The first failure aborts the sequence and is reported as a
// *ServiceStartError; services started earlier are left running, since
// environment teardown is external to the harness.
//
// # Service States
//
// Services move through unknown -> starting -> running and end in stopped
// or failed. State changes are observable through a StateChangeCallback.
//
// # Readiness
//
// A service is ready when its configured probes pass: a TCP dial on a
// localhost port, an HTTP GET returning 2xx, or both. Probes are polled on
// a ticker until the per-service timeout. While waiting, the console log
// and the service's own log file (when configured) are followed with
// fsnotify and streamed into the harness log at debug level, so startup
// stalls can be diagnosed from the harness output alone.
//
// # Process Lifetime
//
// Started processes hold no pipe to the harness, only descriptors to their
// console log file. They survive the harness exiting, so an environment
// provisioned once stays up for repeated test invocations.
package services
