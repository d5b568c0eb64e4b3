// Package middleware provides HTTP middleware for the accounts API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - AccessLog: one slog record per request with the route pattern and,
//     for error responses, the problem code
//   - Recovery: turns panics into a 500 Problem Details response
//   - CORS: origin allow-list and preflight handling
//   - Compress: gzip for clients that accept it, except Problem Details
//     and empty bodies
//
// Chain applies them in order, outermost first:
//
//	wrapped := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.AccessLog(logger),
//	    middleware.Recovery,
//	    middleware.CORS(origins),
//	    middleware.Compress,
//	)
//
// Handlers read the request identifier with GetRequestID(ctx).
package middleware
