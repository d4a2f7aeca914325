// Package model defines the core data structures used throughout pricewatch.
//
// This package contains the following main types:
//   - Watch: One configured query with its filter criteria
//   - Item: One product listing as returned by the upstream API
//   - ListingPage: One decoded page of the paginated listing response
//   - WatchResult: Everything collected while processing a single watch
//   - Changes: The difference between two runs of the same watch
//
// Design decision: Items are kept close to the wire format. Known fields
// are exposed through Value, which preserves the original JSON encoding,
// and every other field is carried in Item.Extra so that reports can
// reproduce the upstream object verbatim.
package model
