// Package bridge decodes PDF documents into the fills and text fragments the
// table detector consumes.
package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/pdf2tree/go/internal/logger"
	"github.com/pdf2tree/go/internal/models"
)

var Logger = logger.GetLogger("bridge")

// ErrDecode wraps every failure of the underlying PDF reader.
var ErrDecode = errors.New("bridge: cannot decode document")

// Rect is a rectangle in PDF user space (origin bottom-left).
type Rect struct{ X0, Y0, X1, Y1 float64 }

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }
func (r Rect) IsEmpty() bool   { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Canon orders the corners so that X0 <= X1 and Y0 <= Y1.
func (r Rect) Canon() Rect {
	return Rect{math.Min(r.X0, r.X1), math.Min(r.Y0, r.Y1), math.Max(r.X0, r.X1), math.Max(r.Y0, r.Y1)}
}

var letter = Rect{0, 0, 612, 792}

// RawGlyph is one text run as reported by the reader; Y is the baseline.
type RawGlyph struct {
	X, Y, W, FontSize float64
	Font, S           string
}

type RawPageData struct {
	PageNumber int
	MediaBox   Rect
	Glyphs     []RawGlyph
	Rects      []Rect
}

// Open decodes every page of the file at path.
func Open(path string) ([]models.Page, error) {
	Logger.Debug("opening document", "path", path)
	var pages []models.Page
	err := safely(func() error {
		f, r, err := lpdf.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		pages, err = decode(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return pages, nil
}

// Parse decodes every page of an in-memory document.
func Parse(buf []byte) ([]models.Page, error) {
	var pages []models.Page
	err := safely(func() error {
		r, err := lpdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
		if err != nil {
			return err
		}
		pages, err = decode(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return pages, nil
}

// safely turns a panic of the reader on malformed input into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("reader panic: %v", v)
		}
	}()
	return fn()
}

func decode(r *lpdf.Reader) ([]models.Page, error) {
	n := r.NumPage()
	pages := make([]models.Page, 0, n)
	for i := 1; i <= n; i++ {
		raw, err := ReadRawPage(r, i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, raw.Page())
	}
	Logger.Debug("document decoded", "pages", n)
	return pages, nil
}

func ReadRawPage(r *lpdf.Reader, num int) (*RawPageData, error) {
	p := r.Page(num)
	raw := &RawPageData{PageNumber: num, MediaBox: letter}
	if p.V.IsNull() {
		return raw, nil
	}
	if mb := p.V.Key("MediaBox"); mb.Kind() == lpdf.Array && mb.Len() == 4 {
		box := Rect{mb.Index(0).Float64(), mb.Index(1).Float64(), mb.Index(2).Float64(), mb.Index(3).Float64()}.Canon()
		if !box.IsEmpty() {
			raw.MediaBox = box
		}
	}

	content := p.Content()
	raw.Glyphs = make([]RawGlyph, 0, len(content.Text))
	for _, t := range content.Text {
		raw.Glyphs = append(raw.Glyphs, RawGlyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, Font: t.Font, S: t.S})
	}
	raw.Rects = make([]Rect, 0, len(content.Rect))
	for _, rc := range content.Rect {
		raw.Rects = append(raw.Rects, Rect{rc.Min.X, rc.Min.Y, rc.Max.X, rc.Max.Y})
	}
	Logger.Debug("page data loaded", "pageNum", num, "glyphs", len(raw.Glyphs), "rects", len(raw.Rects))
	return raw, nil
}

// Page converts raw data to top-left page space and joins glyph runs into
// fragments.
func (raw *RawPageData) Page() models.Page {
	mb := raw.MediaBox
	page := models.Page{Number: raw.PageNumber, Width: mb.Width(), Height: mb.Height()}
	for _, r := range raw.Rects {
		r = r.Canon()
		// the decoder reports no fill colour, so Color stays empty
		page.Fills = append(page.Fills, models.Fill{
			X: r.X0 - mb.X0,
			Y: mb.Y1 - r.Y1,
			W: r.Width(),
			H: r.Height(),
		})
	}
	page.Texts = JoinGlyphs(raw.Glyphs, mb)
	return page
}

const (
	// share of the font size above the baseline where a glyph box starts
	ascent = 0.8
	// space width relative to the font size
	spaceRatio = 0.25
	// baseline drift still counted as the same line
	baselineTolerance = 0.5
)

// JoinGlyphs merges runs on the same baseline whose gap is at most a space wide.
// Runs are visited in reading order.
func JoinGlyphs(glyphs []RawGlyph, mb Rect) []models.Text {
	sorted := make([]RawGlyph, len(glyphs))
	copy(sorted, glyphs)
	line := func(g RawGlyph) float64 { return math.Round(g.Y / baselineTolerance) }
	sort.SliceStable(sorted, func(i, j int) bool {
		if li, lj := line(sorted[i]), line(sorted[j]); li != lj {
			return li > lj
		}
		return sorted[i].X < sorted[j].X
	})

	var out []models.Text
	var cur *models.Text
	var baseline, end float64
	for _, g := range sorted {
		sw := g.FontSize * spaceRatio
		if cur != nil && math.Abs(g.Y-baseline) <= baselineTolerance && g.X-end <= sw && g.X >= end-sw {
			cur.S += g.S
			end = math.Max(end, g.X+g.W)
			cur.W = end - (cur.X + mb.X0)
			continue
		}
		if cur != nil {
			out = append(out, *cur)
		}
		cur = &models.Text{
			X:        g.X - mb.X0,
			Y:        mb.Y1 - g.Y - g.FontSize*ascent,
			W:        g.W,
			SW:       sw,
			FontSize: g.FontSize,
			S:        g.S,
		}
		baseline, end = g.Y, g.X+g.W
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}
