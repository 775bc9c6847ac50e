// Package server provides the Gin HTTP server and the error handler that
// renders recorded errors as JSON.
//
// Handlers report failures with RespondWithError (or c.Error followed by
// c.Abort). ErrorHandler formats the last recorded error: classified faults
// use the flat {status, message, metadata?, stack?} body and any other error
// the nested {"error": {...}} body.
//
// # Middleware
//
// ApplyMiddleware installs, in order:
//
//   - RequestID: request id generation and propagation
//   - RequestLogger: request logging with duration
//   - ErrorHandler: error formatting, logging, tracing and metrics
//   - Recovery: panics become opaque 500 errors
//   - CORS and BodySizeLimit
//   - RateLimit when configured
package server
