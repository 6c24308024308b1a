// Package loader provides the feature loading system for the HTTP server.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry; LoadAll registers the routes of every enabled feature.
package loader
