package course

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentTitle extracts the <title> text from an HTML document.
// The second return value is false when the document has no usable title.
func DocumentTitle(r io.Reader) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false
	}
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	return title, title != ""
}

// Title returns the launch document's <title> text, if any.
func (c *Course) Title() (string, bool) {
	f, err := c.Open(c.LaunchFile)
	if err != nil {
		return "", false
	}
	defer f.Close()
	return DocumentTitle(f)
}
