package models

import (
	"encoding/json"
	"testing"
)

func TestRowJSON(t *testing.T) {
	a := &Data{Texts: []Text{{X: 1, Y: 2, S: "a"}}}
	shared := NewData()
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"empty table", Table(nil), `[]`},
		{"leaf", Table{{Cells: []*Data{a}}}, `[[{"Texts":[{"x":1,"y":2,"w":0,"sw":0,"s":"a"}]}]]`},
		{"children", Row{Cells: []*Data{shared}, Children: []Row{{Cells: []*Data{shared}}}}, `[{"Texts":[]},[[{"Texts":[]}]]]`},
		{"secondary and nested", Row{Cells: []*Data{shared}, Secondary: []*Data{shared}, Nested: []Table{{{Cells: []*Data{shared}}}}}, `[{"Texts":[]},{"Texts":[]},[[{"Texts":[]}]]]`},
		{"outside", Segment{Outside: &Data{Texts: []Text{{S: "b", FontSize: 9}}}}, `{"Texts":[{"x":0,"y":0,"w":0,"sw":0,"size":9,"s":"b"}]}`},
	}

	for _, tc := range tests {
		b, err := json.Marshal(tc.v)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if string(b) != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, b, tc.want)
		}
	}
}

func TestSegmentEmpty(t *testing.T) {
	tests := []struct {
		name string
		s    Segment
		want bool
	}{
		{"nothing", Segment{}, true},
		{"empty outside", Segment{Outside: NewData()}, true},
		{"outside", Segment{Outside: &Data{Texts: []Text{{S: "x"}}}}, false},
		{"table", Segment{Table: Table{{}}}, false},
	}
	for _, tc := range tests {
		if got := tc.s.Empty(); got != tc.want {
			t.Errorf("%s: Empty = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFillInvisible(t *testing.T) {
	if !(Fill{Color: "#FFFFFF"}).Invisible() || (Fill{Color: "#000000"}).Invisible() || (Fill{}).Invisible() {
		t.Error("Invisible() misclassifies colors")
	}
}
