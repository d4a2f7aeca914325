package report

import (
	"path/filepath"

	"github.com/nao1215/pricewatch/internal/model"
)

const (
	// fileSuffix is appended to every report's base name.
	fileSuffix = "_results"

	// IndexFileName is the name of the page linking all reports.
	IndexFileName = "index.html"
)

// Paths holds the output file paths of one watch.
type Paths struct {
	JSON     string
	HTML     string
	Markdown string
}

// NewPaths returns the report paths for label inside dir.
// File names follow model.BaseName.
func NewPaths(dir, label string) Paths {
	stem := filepath.Join(dir, model.BaseName(label)+fileSuffix)
	return Paths{
		JSON:     stem + ".json",
		HTML:     stem + ".html",
		Markdown: stem + ".md",
	}
}
