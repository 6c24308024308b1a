// Package match links listing performances to inventory events by fuzzy title similarity
// and start time proximity.
//
// Titles are compared with PartialRatio, the best score of the shorter title against any
// window of the longer one, so "the nutcracker" still finds "the nutcracker - holiday gala".
// Among candidates over the threshold the closest start time wins, and a winner further
// apart than the tolerance is rejected. See Match for the tie-break and claim rules.
package match
