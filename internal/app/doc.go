// Package app wires configuration, logging, telemetry and the step pipeline
// together for the binaries under cmd/.
//
// Runtime is what every binary shares: the loaded configuration, resolved
// paths, the global logger, OpenTelemetry providers and the operations
// manager with every pipeline step registered. The CLIs execute steps on it
// directly; Application adds the chi router and HTTP server on top.
//
// # Shutdown
//
// Application.Run stops on SIGINT or SIGTERM. Stop drains the HTTP server,
// cancels an operation still running, waits for it and flushes telemetry.
// Errors are returned to the caller; the package never calls os.Exit.
package app
