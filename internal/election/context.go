package election

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/palette"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// Context binds a dataset and its aggregates to one parameter set
type Context struct {
	Dataset    *Dataset
	Aggregates Aggregates
	Params     models.ModeParams
	Colors     palette.PartyColors

	national   map[string]float64
	partyCodes []string
}

// NewContext sanitizes params against the dataset and precomputes the
// national share distribution.
func NewContext(d *Dataset, agg Aggregates, params models.ModeParams) *Context {
	c := &Context{
		Dataset:    d,
		Aggregates: agg,
		Params:     SanitizeParams(params, d),
		Colors:     palette.NewPartyColors(d.Parties),
		partyCodes: d.PartyCodes(),
	}
	c.national = NationalShares(d.Parties)
	return c
}

// Features returns the features of the active granularity
func (c *Context) Features() []*geojson.Feature {
	return c.Dataset.FeaturesFor(c.Params.Granularity)
}

// Granularity is shorthand for c.Params.Granularity
func (c *Context) Granularity() models.Granularity {
	return c.Params.Granularity
}

// NationalShares derives each party's national share from total votes.
// Returns nil when the roster total is not positive.
func NationalShares(parties []models.Party) map[string]float64 {
	totals := make(map[string]float64, len(parties))
	for _, p := range parties {
		v := p.TotalVotes
		if !stats.IsFinite(v) {
			v = 0
		}
		totals[p.Code] = v
	}
	shares, ok := stats.Normalize(totals)
	if !ok {
		return nil
	}
	return shares
}
