// Package logging builds the process slog.Logger.
//
// Records carry service and version, the request ID and client address
// attached to the context by the HTTP layer, and OpenTelemetry trace and
// span IDs when a span is active. LogError expands samber/oops errors into
// their code and context attributes.
package logging
