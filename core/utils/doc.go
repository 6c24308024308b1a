// Package utils holds small conversion helpers for loosely typed vendor payloads.
//
// Source feeds disagree on scalar types: ids arrive as numbers in one feed and as
// strings in the next, flags as booleans, "1"/"0" or "Y"/"N". Adapters decode with
// json.Decoder.UseNumber and funnel every scalar through these helpers at the
// boundary so nothing past the normalizer ever sees an untyped value.
package utils
