// Package report writes watch results to disk and to the terminal.
//
// This package contains writers for different output formats:
//   - JSONWriter: The matching items as a JSON array, each item verbatim
//   - HTMLWriter: A standalone HTML table of the matching items
//   - MarkdownWriter: The same table plus run details in Markdown
//   - SummaryWriter: A terminal table summarizing every watch of a run
//   - IndexWriter: An HTML page linking the reports of all watches
//
// Emitter ties them together: for each finished watch it derives the
// output file names from the label, compares the matches with the
// previous JSON report, and writes the enabled formats.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
