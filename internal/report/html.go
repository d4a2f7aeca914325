package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/pricewatch/internal/model"
)

// tableStyle is the stylesheet embedded in every HTML report.
const tableStyle = `
    body { font-family: Arial, sans-serif; margin: 2em; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
    th { background: #f4f4f4; }
    tr:nth-child(even) { background: #fafafa; }
    tr.new { background: #eaffea; }
    a { color: #0074d9; text-decoration: none; }
    a:hover { text-decoration: underline; }
  `

// columns are the table headers, in order.
var columns = []string{"#", "Title", "Price", "Actual Price", "Article", "Warranty", "URL", "Branch"}

// HTMLWriter outputs the matching items of a watch as a standalone HTML page.
//
// Design decision: The page is built as an x/net/html node tree and
// rendered, rather than assembled from strings, so every value coming
// from the API is escaped by the renderer.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs result.Filtered as an HTML table titled with the label.
// Rows for items that are new since the previous run get class "new".
func (w *HTMLWriter) Write(result *model.WatchResult) (int, error) {
	fresh := make(map[string]bool)
	if result.Changes != nil {
		for _, it := range result.Changes.Added {
			fresh[model.Fingerprint(it)] = true
		}
	}

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), result.Label))
	body.AppendChild(itemsTable(result.Filtered, fresh))

	return renderPage(w.output, result.Label, body)
}

// itemsTable builds the table of items.
func itemsTable(items []model.Item, fresh map[string]bool) *html.Node {
	headRow := element(atom.Tr)
	for _, c := range columns {
		headRow.AppendChild(withText(element(atom.Th), c))
	}
	thead := element(atom.Thead)
	thead.AppendChild(headRow)

	tbody := element(atom.Tbody)
	for i, it := range items {
		var row *html.Node
		if fresh[model.Fingerprint(it)] {
			row = element(atom.Tr, attr("class", "new"))
		} else {
			row = element(atom.Tr)
		}

		row.AppendChild(withText(element(atom.Td), strconv.Itoa(i+1)))
		row.AppendChild(withText(element(atom.Td), cellText(it.Title)))
		row.AppendChild(withText(element(atom.Td), cellText(it.Price)))
		row.AppendChild(withText(element(atom.Td), cellText(it.ActualPrice)))
		row.AppendChild(withText(element(atom.Td), cellText(it.Article)))
		row.AppendChild(withText(element(atom.Td), cellText(it.WarrantyTerm)))

		urlCell := element(atom.Td)
		if href := linkTarget(it.URL); href != "" {
			link := element(atom.A,
				attr("href", href),
				attr("target", "_blank"),
				attr("rel", "noopener"),
			)
			urlCell.AppendChild(withText(link, "link"))
		} else {
			// Shown as text only.
			withText(urlCell, cellText(it.URL))
		}
		row.AppendChild(urlCell)

		row.AppendChild(withText(element(atom.Td), it.BranchName()))
		tbody.AppendChild(row)
	}

	table := element(atom.Table)
	table.AppendChild(thead)
	table.AppendChild(tbody)
	return table
}

// renderPage wraps body in a complete HTML document and renders it.
func renderPage(output io.Writer, title string, body *html.Node) (int, error) {
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "UTF-8")))
	head.AppendChild(element(atom.Meta,
		attr("name", "viewport"),
		attr("content", "width=device-width, initial-scale=1.0"),
	))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), tableStyle))

	root := element(atom.Html, attr("lang", "en"))
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return 0, fmt.Errorf("failed to render HTML: %w", err)
	}
	buf.WriteByte('\n')

	return output.Write(buf.Bytes())
}

// element creates an element node for the given tag.
func element(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag.String(),
		DataAtom: tag,
		Attr:     attrs,
	}
}

// withText appends a text child to n and returns n.
// Empty text adds nothing.
func withText(n *html.Node, text string) *html.Node {
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// IndexEntry is one report linked from the index page.
type IndexEntry struct {
	// Label is the watch label shown as the card title.
	Label string

	// Href is the report location relative to the index page.
	Href string

	// Matches is the number of matching listings in the report.
	Matches int
}

// IndexWriter outputs a page linking the HTML reports of all watches.
type IndexWriter struct {
	baseWriter
}

// NewIndexWriter creates an IndexWriter that outputs to the given writer.
func NewIndexWriter(output io.Writer) *IndexWriter {
	return &IndexWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one card per entry, in the given order.
func (w *IndexWriter) Write(entries []IndexEntry) (int, error) {
	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), "Price Watch Reports"))

	list := element(atom.Div, attr("class", "reports"))
	for _, e := range entries {
		card := element(atom.Div, attr("class", "report-card"))
		card.AppendChild(withText(element(atom.H2), e.Label))
		card.AppendChild(withText(element(atom.P), fmt.Sprintf("%d matching listing(s)", e.Matches)))
		card.AppendChild(withText(element(atom.A, attr("href", e.Href)), "View report"))
		list.AppendChild(card)
	}
	body.AppendChild(list)

	return renderPage(w.output, "Price Watch Reports", body)
}
