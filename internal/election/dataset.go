// Package election turns raw per-municipality results into render-ready
// choropleth data: aggregates, rankings, per-mode metrics, scale domains,
// colors, stats-panel summaries and legends.
//
// Every function here is pure. A Dataset plus its Aggregates are built once
// per load; a Context binds them to one set of ModeParams.
package election

import (
	"sort"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
)

// Dataset is the immutable input of a render pass
type Dataset struct {
	Parties        []models.Party
	Municipalities map[string]models.MunicipalityRecord
	PrefToBlock    map[string]string
	Features       map[models.Granularity]*geojson.FeatureCollection
}

// NewDataset wires the inputs together and derives the prefecture to bloc
// lookup from the prefecture features when prefToBlock is nil.
func NewDataset(
	parties []models.Party,
	municipalities map[string]models.MunicipalityRecord,
	features map[models.Granularity]*geojson.FeatureCollection,
	prefToBlock map[string]string,
) *Dataset {
	if municipalities == nil {
		municipalities = map[string]models.MunicipalityRecord{}
	}
	if features == nil {
		features = map[models.Granularity]*geojson.FeatureCollection{}
	}
	if prefToBlock == nil {
		prefToBlock = PrefToBlock(features[models.GranularityPref])
	}
	return &Dataset{
		Parties:        parties,
		Municipalities: municipalities,
		PrefToBlock:    prefToBlock,
		Features:       features,
	}
}

// PrefToBlock reads pref_name/block_name pairs from prefecture features
func PrefToBlock(fc *geojson.FeatureCollection) map[string]string {
	out := map[string]string{}
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		pref := spatial.StringProp(f, "pref_name")
		block := spatial.StringProp(f, "block_name")
		if pref != "" && block != "" {
			out[pref] = block
		}
	}
	return out
}

// FeaturesFor returns the feature list of a granularity
func (d *Dataset) FeaturesFor(g models.Granularity) []*geojson.Feature {
	if d == nil {
		return nil
	}
	fc := d.Features[g]
	if fc == nil {
		return nil
	}
	return fc.Features
}

// Party looks up a roster entry by code
func (d *Dataset) Party(code string) (models.Party, bool) {
	for _, p := range d.Parties {
		if p.Code == code {
			return p, true
		}
	}
	return models.Party{}, false
}

// HasParty reports whether code is on the roster
func (d *Dataset) HasParty(code string) bool {
	_, ok := d.Party(code)
	return ok
}

// PartyName returns the roster name of code, or code itself
func (d *Dataset) PartyName(code string) string {
	if p, ok := d.Party(code); ok && p.Name != "" {
		return p.Name
	}
	return code
}

// PartyCodes returns roster codes in roster order
func (d *Dataset) PartyCodes() []string {
	codes := make([]string, len(d.Parties))
	for i, p := range d.Parties {
		codes[i] = p.Code
	}
	return codes
}

// MunicipalityCodes returns municipality codes in ascending order
func (d *Dataset) MunicipalityCodes() []string {
	codes := make([]string, 0, len(d.Municipalities))
	for code := range d.Municipalities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
