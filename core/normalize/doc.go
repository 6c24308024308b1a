// Package normalize converts per-source records into the Event shape both feeds share.
//
// Titles go through one pipeline for both sources (NFC, tag strip, entity decode, punctuation
// fold, lower-case, trim) so the matcher compares like with like. Start times accept the ISO,
// "Month D, YYYY h:mm PM" and "YYYY-MM-DD HH:MM:SS" families; a value that fits none of them
// is an ErrUnparsableTime and the record is dropped with a Diagnostic.
package normalize
