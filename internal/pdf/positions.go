package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docstack/extractor/internal/extract"
)

// Token is one word of the text layer with its page box. Coordinates are PDF
// points with the origin at the bottom-left of the page.
type Token struct {
	Text   string  `json:"text"`
	Page   int     `json:"page"` // 0-indexed
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// PositionResult is the raw material the free parser works from.
type PositionResult struct {
	Text   string
	Tokens []Token
	Pages  []extract.PageInfo
}

// ExtractPositions pulls the text layer plus per-token page coordinates for a
// native PDF. Pages whose content stream cannot be decoded contribute nothing.
func ExtractPositions(buf []byte) (*PositionResult, error) {
	r, err := openReader(buf)
	if err != nil {
		return nil, err
	}

	res := &PositionResult{}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		pageText := pageTextSafe(r, i)
		if b.Len() > 0 && pageText != "" {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)

		w, h := pageSizeSafe(r, i)
		res.Pages = append(res.Pages, extract.PageInfo{
			Number: i - 1,
			Width:  w,
			Height: h,
			Unit:   "point",
		})
		res.Tokens = append(res.Tokens, pageTokensSafe(r, i)...)
	}
	res.Text = b.String()
	return res, nil
}

// pageTokensSafe decodes one page's content stream and merges its glyph
// boxes into word tokens. Undecodable pages contribute nothing.
func pageTokensSafe(r *pdf.Reader, n int) (tokens []Token) {
	defer func() {
		if rec := recover(); rec != nil {
			tokens = nil
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return nil
	}
	return mergeWords(page.Content().Text, n-1)
}

// mergeWords merges per-glyph boxes into word tokens: consecutive glyphs on
// one baseline with no horizontal gap belong together.
func mergeWords(glyphs []pdf.Text, page int) (tokens []Token) {
	var cur *Token
	var lastEnd float64
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			tokens = append(tokens, *cur)
		}
		cur = nil
	}
	for _, t := range glyphs {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		gap := t.X - lastEnd
		sameWord := cur != nil && cur.Y == t.Y && gap >= -0.5 && gap <= t.FontSize*0.3
		if sameWord {
			cur.Text += t.S
			cur.Width = t.X + t.W - cur.X
			if t.FontSize > cur.Height {
				cur.Height = t.FontSize
			}
		} else {
			flush()
			cur = &Token{
				Text:   t.S,
				Page:   page,
				X:      t.X,
				Y:      t.Y,
				Width:  t.W,
				Height: t.FontSize,
			}
		}
		lastEnd = t.X + t.W
	}
	flush()
	return tokens
}

func pageSizeSafe(r *pdf.Reader, n int) (w, h float64) {
	defer func() {
		if rec := recover(); rec != nil {
			w, h = 0, 0
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return 0, 0
	}
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return 0, 0
	}
	w = box.Index(2).Float64() - box.Index(0).Float64()
	h = box.Index(3).Float64() - box.Index(1).Float64()
	return w, h
}
