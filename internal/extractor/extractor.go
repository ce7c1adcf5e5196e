package extractor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdf2tree/go/internal/bridge"
	"github.com/pdf2tree/go/internal/config"
	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/logger"
	"github.com/pdf2tree/go/internal/models"
	"github.com/pdf2tree/go/internal/rectilinear"
	"github.com/pdf2tree/go/internal/table"
)

var Logger = logger.GetLogger("extractor")

// Result holds one entry per page in both lists.
type Result struct {
	Tree      [][]models.Segment
	Hierarchy [][]*table.Hierarchy
}

// ExtractPage detects the tables of one page and routes its text into them. A
// page whose geometry cannot be turned into rows yields empty lists.
func ExtractPage(p models.Page, cfg config.Config) ([]models.Segment, []*table.Hierarchy) {
	tree, hs, err := extractPage(p, cfg)
	if err != nil {
		Logger.Warn("page failed", "page", p.Number, "error", err)
		return []models.Segment{}, []*table.Hierarchy{}
	}
	return tree, hs
}

func extractPage(p models.Page, cfg config.Config) (tree []models.Segment, hs []*table.Hierarchy, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", table.ErrInconsistentGeometry, v)
		}
	}()

	rects := make([]geometry.Rect, len(p.Fills))
	invisible := 0
	for i, f := range p.Fills {
		if f.Invisible() {
			invisible++
		}
		rects[i] = f.Rect()
	}
	if invisible > 0 {
		Logger.Warn("invisible fills used as lines", "page", p.Number, "count", invisible)
	}

	g := rectilinear.Build(rects, cfg.MaxStrokeWidth, cfg.MaxGapWidth)
	hs, err = table.Detect(g)
	if err != nil {
		return nil, nil, err
	}

	texts := p.Texts
	if cfg.CleanText {
		texts = CleanupTexts(texts, DefaultCleanup)
	}
	top := table.Nest(hs)
	outside := table.Place(top, texts)
	table.Fold(hs)

	tree = assemble(top, outside)
	Logger.Debug("page extraction complete", "pageNum", p.Number, "tables", len(hs), "segments", len(tree))
	return tree, hs, nil
}

// assemble interleaves the top-level tables with the outside text found before
// each of them, in reading order.
func assemble(top []*table.Hierarchy, outside *models.Data) []models.Segment {
	ordered := make([]*table.Hierarchy, len(top))
	copy(ordered, top)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Box.Y != ordered[j].Box.Y {
			return ordered[i].Box.Y < ordered[j].Box.Y
		}
		return ordered[i].Box.X < ordered[j].Box.X
	})

	tree := []models.Segment{}
	push := func(s models.Segment) {
		if !s.Empty() {
			tree = append(tree, s)
		}
	}

	rest := outside.Texts
	for _, h := range ordered {
		box := h.Box
		before, after := models.NewData(), []models.Text{}
		for _, t := range rest {
			if t.Y > box.Y+box.H || (t.Y > box.Y && t.X < box.X) {
				after = append(after, t)
			} else {
				before.Texts = append(before.Texts, t)
			}
		}
		push(models.Segment{Outside: before})
		push(models.Segment{Table: h.Table()})
		rest = after
	}
	push(models.Segment{Outside: &models.Data{Texts: rest}})
	return tree
}

// Process extracts all pages concurrently. Results keep page order.
func Process(ctx context.Context, pages []models.Page, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		Tree:      make([][]models.Segment, len(pages)),
		Hierarchy: make([][]*table.Hierarchy, len(pages)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerLimit())
	for i := range pages {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Tree[i], res.Hierarchy[i] = ExtractPage(pages[i], cfg)
			Logger.Debug("processed page", "page", pages[i].Number)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Logger.Info("high level data extraction", "pages", len(pages), "timeInGo", time.Since(start))
	return res, nil
}

// ProcessFile decodes the document at path and processes all of its pages.
func ProcessFile(ctx context.Context, path string, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	pages, err := bridge.Open(path)
	if err != nil {
		return nil, err
	}
	Logger.Info("raw data extraction", "pages", len(pages), "time", time.Since(start))
	return Process(ctx, pages, cfg)
}

// ProcessBuffer is ProcessFile for an in-memory document.
func ProcessBuffer(ctx context.Context, buf []byte, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pages, err := bridge.Parse(buf)
	if err != nil {
		return nil, err
	}
	return Process(ctx, pages, cfg)
}
