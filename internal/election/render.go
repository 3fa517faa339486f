package election

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
)

// FeatureRender is what the map needs to draw one feature
type FeatureRender struct {
	Key   string             `json:"key"`
	Stats models.RenderStats `json:"stats"`
	Color string             `json:"color"`
}

// Result is one full render pass at the context's parameters
type Result struct {
	Params   models.ModeParams  `json:"params"`
	Scale    models.ScaleDomain `json:"scale"`
	Features []FeatureRender    `json:"features"`

	rows []models.RenderStats
}

// Render computes stats for every feature, calibrates the scale over them
// and colors each feature against that scale.
func Render(c *Context) (*Result, error) {
	h, err := HandlerFor(c.Params.Mode)
	if err != nil {
		return nil, err
	}

	features := c.Features()
	rows := make([]models.RenderStats, len(features))
	for i, f := range features {
		rows[i] = h.Stats(c, f)
	}
	domain := h.Scale(c, rows)

	out := &Result{
		Params:   c.Params,
		Scale:    domain,
		Features: make([]FeatureRender, len(rows)),
		rows:     rows,
	}
	for i, s := range rows {
		out.Features[i] = FeatureRender{Key: s.Key, Stats: s, Color: h.Color(c, s, domain)}
	}
	return out, nil
}

// Summary builds the stats panel for a finished render pass
func (r *Result) Summary(c *Context) Summary {
	h, err := HandlerFor(c.Params.Mode)
	if err != nil {
		return Summary{Mode: c.Params.Mode, Granularity: c.Granularity(), NoData: true}
	}
	return h.Summary(c, r.rows)
}

// Legend builds the legend for a finished render pass
func (r *Result) Legend(c *Context) Legend {
	return BuildLegend(c, r.Scale, r.rows)
}

// Labels places labels for the context's features in a viewport
func Labels(c *Context, vp spatial.Viewport, visible bool) []spatial.Label {
	return spatial.SelectLabels(c.Features(), c.Granularity(), vp, visible, func(f *geojson.Feature) (string, string) {
		return LabelText(c, f)
	})
}
