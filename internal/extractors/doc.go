// Package extractors provides PageExtractor implementations that turn
// uploaded files into per-page text. Each extractor knows one file format.
//
// Extractors are registered with a Registry at startup, which selects one by
// file extension first and content type second.
package extractors
