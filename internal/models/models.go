package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pdf2tree/go/internal/geometry"
)

// Fill is a filled rectangle as delivered by the page decoder.
type Fill struct {
	X, Y, W, H float64
	Color      string
}

func (f Fill) Rect() geometry.Rect { return geometry.Rect{X: f.X, Y: f.Y, W: f.W, H: f.H} }

// Invisible reports fills painted white; they still take part in line detection.
func (f Fill) Invisible() bool { return strings.EqualFold(f.Color, "#ffffff") }

// Text is a positioned text fragment. (X, Y) is its top-left anchor, SW the space
// width used as containment tolerance.
type Text struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	SW       float64 `json:"sw"`
	FontSize float64 `json:"size,omitempty"`
	S        string  `json:"s"`
}

func (t Text) Anchor() geometry.Anchor { return geometry.Anchor{X: t.X, Y: t.Y, SW: t.SW} }

type Page struct {
	Number        int
	Width, Height float64
	Fills         []Fill
	Texts         []Text
}

// Data collects the page elements routed into one cell or outside segment.
type Data struct {
	Texts []Text `json:"Texts"`
}

func NewData() *Data { return &Data{Texts: []Text{}} }

func (d *Data) Empty() bool { return d == nil || len(d.Texts) == 0 }

// Row is the serialized form of one hierarchy node. It encodes as a flat JSON array:
// cells, then the children array (if any), then secondary cells and embedded tables.
type Row struct {
	Cells     []*Data
	Children  []Row
	Secondary []*Data
	Nested    []Table
}

func (r Row) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(r.Cells)+1+len(r.Secondary)+len(r.Nested))
	for _, c := range r.Cells {
		items = append(items, c)
	}
	if len(r.Children) > 0 {
		items = append(items, r.Children)
	}
	for _, c := range r.Secondary {
		items = append(items, c)
	}
	for _, t := range r.Nested {
		items = append(items, t)
	}
	return marshalNoEscape(items)
}

// Table is the list of top-level rows of one detected table.
type Table []Row

func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return marshalNoEscape([]Row(t))
}

// Segment is one entry of a page tree: either a run of text outside every table or
// a table.
type Segment struct {
	Outside *Data
	Table   Table
}

func (s Segment) Empty() bool {
	if s.Outside != nil {
		return s.Outside.Empty()
	}
	return len(s.Table) == 0
}

func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Outside != nil {
		return marshalNoEscape(s.Outside)
	}
	return s.Table.MarshalJSON()
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
