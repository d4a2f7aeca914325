// Package filter decides which fetched items are reported for a watch.
//
// An item passes when all four criteria hold:
//   - Price: the effective price (actual_price, falling back to price) is
//     at most the watch's ceiling
//   - Include: at least one include term matches the article or title
//   - Exclude: no exclude term matches the article or title
//   - City: the branch city contains the watch's city, when one is set
//
// Filtering is pure and order-preserving: Apply never reorders or
// modifies items, and applying it twice yields the same result as once.
package filter
