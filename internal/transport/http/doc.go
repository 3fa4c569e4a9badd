// Package http implements the HTTP handlers of the web server. Handlers stay
// thin: they parse the request, call the operations manager or read the
// persisted corpus reports, and render JSON with go-chi/render.
//
// # Endpoints
//
//	GET  /api/health              liveness plus data directory checks
//	GET  /api/version             build information
//	GET  /api/corpora             every persisted corpus report
//	GET  /api/corpora/{id}        one corpus report
//	GET  /api/operations          registered steps and their dependencies
//	GET  /api/operations/status   running and last operation
//	POST /api/operations/{step}   start a step, or "all" for the whole pipeline
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by errors.ErrorHandler.
// Starting an operation while another runs answers 409 Conflict.
package http
