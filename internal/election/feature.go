package election

import (
	"math"
	"strings"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
)

const muniCodeWidth = 5

var fallbackLabels = map[models.Granularity]string{
	models.GranularityPref:  "都道府県",
	models.GranularityBlock: "ブロック",
}

// FeatureKey returns the lookup key of a feature: the zero-padded
// municipality code, the prefecture name or the bloc name.
func FeatureKey(f *geojson.Feature, g models.Granularity) string {
	switch g {
	case models.GranularityMuni:
		code := spatial.StringProp(f, "muni_code")
		if code == "" {
			return ""
		}
		return spatial.PadCode(code, muniCodeWidth)
	case models.GranularityPref:
		return spatial.StringProp(f, "pref_name")
	}
	return spatial.StringProp(f, "block_name")
}

// FeatureStats returns the label, the share of partyCode and the valid vote
// count of a feature at the context's granularity.
func FeatureStats(c *Context, f *geojson.Feature, partyCode string) models.FeatureStats {
	g := c.Granularity()
	key := FeatureKey(f, g)

	if g == models.GranularityMuni {
		rec, ok := c.Dataset.Municipalities[key]
		out := models.FeatureStats{Key: key, Label: municipalityLabel(f, rec)}
		if !ok {
			return out
		}
		if share, found := rec.Parties[partyCode]; found && !math.IsNaN(share) {
			out.Share = &share
		}
		vv := rec.ValidVotes
		out.ValidVotes = &vv
		return out
	}

	label := key
	if label == "" {
		label = fallbackLabels[g]
	}
	agg := c.Aggregates.For(g)[key]
	out := models.FeatureStats{Key: key, Label: label, Share: agg.Share(partyCode)}
	if agg != nil {
		vv := agg.ValidVotes
		out.ValidVotes = &vv
	}
	return out
}

// municipalityLabel prefixes the prefecture unless the name already has it
func municipalityLabel(f *geojson.Feature, rec models.MunicipalityRecord) string {
	name := rec.Name
	if name == "" {
		name = spatial.StringProp(f, "muni_name")
	}
	name = strings.TrimSpace(name)

	pref := rec.Pref
	if pref == "" {
		pref = spatial.StringProp(f, "pref_name")
	}
	pref = strings.TrimSpace(pref)

	switch {
	case name == "":
		return ""
	case pref == "", strings.HasPrefix(name, pref):
		return name
	}
	return pref + name
}

// LabelText returns the on-map label of a feature: the municipality name,
// the prefecture name or the bloc name.
func LabelText(c *Context, f *geojson.Feature) (key, text string) {
	g := c.Granularity()
	key = FeatureKey(f, g)
	switch g {
	case models.GranularityMuni:
		name := c.Dataset.Municipalities[key].Name
		if name == "" {
			name = spatial.StringProp(f, "muni_name")
		}
		return key, strings.TrimSpace(name)
	case models.GranularityPref:
		return key, spatial.StringProp(f, "pref_name")
	}
	return key, spatial.StringProp(f, "block_name")
}
