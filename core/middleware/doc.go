// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the crawl endpoints.
//   - rayid: a request id (RayID) stored in the fiber locals and echoed in the
//     X-Ray-ID response header for tracing.
//
// Both are registered globally in the start command; rayid must come first.
package middleware
