package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pdf2tree/go/internal/config"
	"github.com/pdf2tree/go/internal/models"
	"github.com/pdf2tree/go/internal/testutil"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxStrokeWidth, cfg.MaxGapWidth, cfg.Workers = 2, 0, 2
	return cfg
}

func treeJSON(t *testing.T, tree []models.Segment) string {
	t.Helper()
	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestExtractPageSquare(t *testing.T) {
	page := testutil.Page(testutil.Square(0, 0, 10, 1),
		testutil.Text(5, 5, "in"),
		testutil.Text(-1, -1, "out"),
	)
	tree, hs := ExtractPage(page, testConfig())
	if len(hs) != 1 {
		t.Fatalf("expected 1 hierarchy, got %d", len(hs))
	}
	want := `[{"Texts":[{"x":-1,"y":-1,"w":0,"sw":0,"s":"out"}]},[[{"Texts":[{"x":5,"y":5,"w":0,"sw":0,"s":"in"}]}]]]`
	if got := treeJSON(t, tree); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestExtractPageTrailingText(t *testing.T) {
	page := testutil.Page(testutil.Square(0, 0, 10, 1), testutil.Text(5, 50, "after"))
	tree, _ := ExtractPage(page, testConfig())
	if len(tree) != 2 || tree[0].Outside != nil || tree[1].Outside == nil {
		t.Fatalf("expected [table, outside], got %s", treeJSON(t, tree))
	}
	if got := tree[1].Outside.Texts; len(got) != 1 || got[0].S != "after" {
		t.Errorf("trailing segment = %+v", got)
	}
}

func TestExtractPageWithoutTables(t *testing.T) {
	page := testutil.Page(nil, testutil.Text(1, 1, "a"), testutil.Text(1, 20, "b"))
	tree, hs := ExtractPage(page, testConfig())
	if len(hs) != 0 {
		t.Errorf("expected no hierarchies, got %d", len(hs))
	}
	if len(tree) != 1 || len(tree[0].Outside.Texts) != 2 {
		t.Errorf("expected a single outside segment, got %s", treeJSON(t, tree))
	}
}

func TestExtractPageEmpty(t *testing.T) {
	tree, hs := ExtractPage(testutil.Page(nil), testConfig())
	if tree == nil || hs == nil || len(tree) != 0 || len(hs) != 0 {
		t.Errorf("expected empty non-nil lists, got %v %v", tree, hs)
	}
}

func TestExtractPageGeometryFailure(t *testing.T) {
	fills := []models.Fill{
		testutil.HLine(0, 0, 10, 1),
		testutil.HLine(0, 5, 5, 1),
		testutil.HLine(0, 8, 10, 1),
		testutil.VLine(0, 0, 8, 1),
		testutil.VLine(5, 3, 5, 1),
		testutil.VLine(10, 0, 8, 1),
	}
	tree, hs := ExtractPage(testutil.Page(fills, testutil.Text(2, 2, "lost")), testConfig())
	if len(tree) != 0 || len(hs) != 0 {
		t.Errorf("failed page should be empty, got %d segments and %d hierarchies", len(tree), len(hs))
	}
}

func TestExtractPageReadingOrder(t *testing.T) {
	// the lower table is found first because its lines start further left
	fills := testutil.Square(0, 100, 10, 1)
	fills = append(fills, testutil.Square(200, 0, 10, 1)...)
	page := testutil.Page(fills, testutil.Text(5, 50, "between"))

	tree, hs := ExtractPage(page, testConfig())
	if len(hs) != 2 {
		t.Fatalf("expected 2 hierarchies, got %d", len(hs))
	}
	if len(tree) != 3 || tree[0].Outside != nil || tree[1].Outside == nil || tree[2].Outside != nil {
		t.Fatalf("expected [table, outside, table], got %s", treeJSON(t, tree))
	}
	if got := tree[1].Outside.Texts; len(got) != 1 || got[0].S != "between" {
		t.Errorf("middle segment = %+v", got)
	}
}

func TestExtractPageNestedTable(t *testing.T) {
	fills := testutil.Square(0, 0, 100, 1)
	fills = append(fills, testutil.Square(20, 20, 10, 1)...)
	page := testutil.Page(fills, testutil.Text(25, 25, "inner"))

	tree, hs := ExtractPage(page, testConfig())
	if len(hs) != 2 {
		t.Fatalf("expected 2 hierarchies, got %d", len(hs))
	}
	want := `[[[{"Texts":[]},[[{"Texts":[{"x":25,"y":25,"w":0,"sw":0,"s":"inner"}]}]]]]]`
	if got := treeJSON(t, tree); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestCleanupTexts(t *testing.T) {
	in := []models.Text{
		{X: 1, S: "a  b\n"},
		{X: 2, S: "   "},
		{X: 3, S: "hyphen-\nated"},
		{X: 4, S: ""},
	}
	got := CleanupTexts(in, DefaultCleanup)
	want := []string{"a b", "", "hyphenated", ""}
	if len(got) != len(want) {
		t.Fatalf("CleanupTexts() returned %d fragments, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].S != w || got[i].X != in[i].X {
			t.Errorf("fragment %d = %+v, want s=%q x=%v", i, got[i], w, in[i].X)
		}
	}
	if in[0].S != "a  b\n" {
		t.Error("CleanupTexts modified its input")
	}
}

// pageWithBlanks has a whitespace-only fragment inside the square, one before it
// and a spaced fragment after it.
func pageWithBlanks() models.Page {
	return testutil.Page(testutil.Square(0, 0, 10, 1),
		testutil.Text(5, 5, "  "),
		testutil.Text(-5, -5, " "),
		testutil.Text(20, 20, "a  b\n"),
	)
}

func segmentTexts(t *testing.T, tree []models.Segment) (before, cell, after []models.Text) {
	t.Helper()
	if len(tree) != 3 || tree[0].Outside == nil || tree[1].Table == nil || tree[2].Outside == nil {
		t.Fatalf("expected [outside, table, outside], got %s", treeJSON(t, tree))
	}
	rows := tree[1].Table
	if len(rows) != 1 || len(rows[0].Cells) != 1 {
		t.Fatalf("expected one cell, got %s", treeJSON(t, tree))
	}
	return tree[0].Outside.Texts, rows[0].Cells[0].Texts, tree[2].Outside.Texts
}

func TestExtractPageKeepsEveryFragment(t *testing.T) {
	tree, _ := ExtractPage(pageWithBlanks(), testConfig())
	before, cell, after := segmentTexts(t, tree)

	if len(cell) != 1 || cell[0].S != "  " {
		t.Errorf("cell = %+v, want the blank fragment", cell)
	}
	if len(before) != 1 || before[0].S != " " {
		t.Errorf("leading outside = %+v", before)
	}
	if len(after) != 1 || after[0].S != "a  b\n" {
		t.Errorf("trailing outside = %+v, want text unchanged", after)
	}
}

func TestExtractPageCleanText(t *testing.T) {
	cfg := testConfig()
	cfg.CleanText = true
	tree, _ := ExtractPage(pageWithBlanks(), cfg)
	before, cell, after := segmentTexts(t, tree)

	if len(cell) != 1 || cell[0].S != "" {
		t.Errorf("cell = %+v", cell)
	}
	if len(before) != 1 || before[0].S != "" {
		t.Errorf("leading outside = %+v", before)
	}
	if len(after) != 1 || after[0].S != "a b" {
		t.Errorf("trailing outside = %+v", after)
	}
}

func TestProcessKeepsPageOrder(t *testing.T) {
	var pages []models.Page
	for i := 0; i < 8; i++ {
		p := testutil.Page(testutil.Square(0, 0, 10, 1), testutil.Text(5, 5, string(rune('a'+i))))
		p.Number = i + 1
		pages = append(pages, p)
	}

	res, err := Process(context.Background(), pages, testConfig())
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(res.Tree) != len(pages) || len(res.Hierarchy) != len(pages) {
		t.Fatalf("got %d trees and %d hierarchy lists for %d pages", len(res.Tree), len(res.Hierarchy), len(pages))
	}
	for i, tree := range res.Tree {
		want := string(rune('a' + i))
		if !strings.Contains(treeJSON(t, tree), `"s":"`+want+`"`) {
			t.Errorf("page %d tree %s does not hold %q", i+1, treeJSON(t, tree), want)
		}
	}

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(b); !strings.HasPrefix(s, `{"Tree":[[`) || !strings.Contains(s, `"Hierarchy":[[{"group":0,"from":0,"to":1,`) {
		t.Errorf("unexpected result JSON: %s", s)
	}
}

func TestProcessRejectsNegativeWidth(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGapWidth = -1
	if _, err := Process(context.Background(), []models.Page{testutil.Page(nil)}, cfg); !errors.Is(err, config.ErrNegativeWidth) {
		t.Errorf("Process() error = %v, want ErrNegativeWidth", err)
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pages := []models.Page{testutil.Page(nil), testutil.Page(nil)}
	if _, err := Process(ctx, pages, testConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestProcessBufferRejectsGarbage(t *testing.T) {
	if _, err := ProcessBuffer(context.Background(), []byte("garbage"), testConfig()); err == nil {
		t.Error("expected a decode error")
	}
}
