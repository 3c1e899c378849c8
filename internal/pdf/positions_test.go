package pdf

import (
	"errors"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/docstack/extractor/internal/common"
)

func glyph(s string, x, y, w, size float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: size}
}

func TestMergeWords(t *testing.T) {
	t.Run("adjacent glyphs on one baseline merge", func(t *testing.T) {
		glyphs := []pdf.Text{
			glyph("T", 10, 700, 6, 12),
			glyph("o", 16, 700, 5, 12),
			glyph("t", 21, 700, 4, 12),
			glyph("a", 25, 700, 5, 12),
			glyph("l", 30, 700, 3, 12),
		}
		tokens := mergeWords(glyphs, 0)
		if len(tokens) != 1 {
			t.Fatalf("got %d tokens, want 1: %+v", len(tokens), tokens)
		}
		tok := tokens[0]
		if tok.Text != "Total" {
			t.Errorf("text = %q, want Total", tok.Text)
		}
		if tok.X != 10 || tok.Width != 23 {
			t.Errorf("box = x=%v w=%v, want x=10 w=23", tok.X, tok.Width)
		}
		if tok.Height != 12 {
			t.Errorf("height = %v, want the font size", tok.Height)
		}
	})

	t.Run("wide gap splits words", func(t *testing.T) {
		glyphs := []pdf.Text{
			glyph("A", 10, 700, 6, 12),
			// gap of 20pt, far beyond FontSize*0.3
			glyph("B", 36, 700, 6, 12),
		}
		tokens := mergeWords(glyphs, 0)
		if len(tokens) != 2 {
			t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
		}
	})

	t.Run("baseline change splits words", func(t *testing.T) {
		glyphs := []pdf.Text{
			glyph("A", 10, 700, 6, 12),
			glyph("B", 16, 680, 6, 12),
		}
		if tokens := mergeWords(glyphs, 0); len(tokens) != 2 {
			t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
		}
	})

	t.Run("whitespace glyph flushes the current word", func(t *testing.T) {
		glyphs := []pdf.Text{
			glyph("A", 10, 700, 6, 12),
			glyph(" ", 16, 700, 3, 12),
			glyph("B", 19, 700, 6, 12),
		}
		tokens := mergeWords(glyphs, 2)
		if len(tokens) != 2 {
			t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
		}
		if tokens[0].Page != 2 || tokens[1].Page != 2 {
			t.Errorf("pages = %d,%d, want 2,2", tokens[0].Page, tokens[1].Page)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if tokens := mergeWords(nil, 0); len(tokens) != 0 {
			t.Fatalf("got %+v, want none", tokens)
		}
	})
}

func TestExtractPositions_UnparsableBuffer(t *testing.T) {
	_, err := ExtractPositions([]byte("not a pdf"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, common.ErrParseFailure) {
		t.Errorf("error = %v, want ErrParseFailure in the chain", err)
	}

	if _, err := ExtractPositions(nil); !errors.Is(err, common.ErrParseFailure) {
		t.Errorf("empty buffer error = %v, want ErrParseFailure", err)
	}
}
