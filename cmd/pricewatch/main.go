// Package main provides the entry point for the pricewatch CLI.
//
// pricewatch queries a retailer's product listing API for each configured
// watch, keeps the listings that match the watch's price, keyword and
// location criteria, and writes JSON, HTML and optionally Markdown reports.
//
// Usage:
//
//	pricewatch init
//	pricewatch run
//	pricewatch run --interval 30m
//	pricewatch open "MacBook results"
//
// See --help for all available options.
package main

// main is the entry point for pricewatch.
func main() {
	Execute()
}
