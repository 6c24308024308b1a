// Package inventory adapts the ticketing inventory API to normalized events.
//
// The API is queried once per run with the venue name and a date window and
// authenticated with static X-Api-Token, X-Application-Token and X-Account headers.
// A payload without a rows key is treated as a failed fetch; an empty rows list is a
// valid empty result.
package inventory
