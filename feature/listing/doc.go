// Package listing adapts a venue's paginated public calendar to normalized events.
//
// Every show item carries its upcoming performances; each performance becomes one
// event whose external and instance id are the performance id. Performances that are
// not public, unavailable, cancelled or sold out are returned excluded.
package listing
