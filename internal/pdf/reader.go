// Package pdf wraps native-PDF parsing: type analysis, token positions and
// document metadata. All entry points are panic-safe; the underlying parser
// is known to panic on malformed cross-reference tables.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/docstack/extractor/internal/common"
)

func openReader(buf []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%w: reader panic: %v", common.ErrParseFailure, rec)
		}
	}()
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", common.ErrParseFailure)
	}
	r, err = pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParseFailure, err)
	}
	return r, nil
}

// fullText walks every page and concatenates the text layer. Individual page
// failures are skipped, not fatal.
func fullText(r *pdf.Reader) (text string, pages int) {
	pages = r.NumPage()
	var b bytes.Buffer
	for i := 1; i <= pages; i++ {
		pageText := pageTextSafe(r, i)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), pages
}

func pageTextSafe(r *pdf.Reader, n int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}
