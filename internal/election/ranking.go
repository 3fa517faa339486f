package election

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// RankParties ranks the parties of a feature by share, highest first, with
// ties kept in roster order. Excluded codes are dropped before sorting so
// they never take a rank.
func RankParties(c *Context, f *geojson.Feature, excluded ...string) []models.RankedParty {
	g := c.Granularity()
	key := FeatureKey(f, g)
	if g == models.GranularityMuni {
		rec, ok := c.Dataset.Municipalities[key]
		if !ok {
			return nil
		}
		return RankMunicipality(rec, c.partyCodes, excluded...)
	}
	return RankAggregate(c.Aggregates.For(g)[key], c.partyCodes, excluded...)
}

// RankMunicipality ranks a municipality record's finite party shares.
// Votes are estimated as share times valid votes. Equal shares keep the
// order given by order.
func RankMunicipality(rec models.MunicipalityRecord, order []string, excluded ...string) []models.RankedParty {
	validVotes := rec.ValidVotes
	if !stats.IsFinite(validVotes) {
		validVotes = 0
	}
	ranked := make([]models.RankedParty, 0, len(rec.Parties))
	for _, code := range orderedCodes(rec.Parties, order) {
		share := rec.Parties[code]
		if !stats.IsFinite(share) || isExcluded(code, excluded) {
			continue
		}
		ranked = append(ranked, models.RankedParty{Code: code, Share: share, Votes: share * validVotes})
	}
	sortRanked(ranked)
	return ranked
}

// RankAggregate ranks an aggregate's parties by votes/validVotes. Parties
// with no positive finite vote count are left out; a missing aggregate or
// one with no valid votes ranks nobody. Equal shares keep the order given
// by order.
func RankAggregate(agg *models.Aggregate, order []string, excluded ...string) []models.RankedParty {
	if agg == nil || agg.ValidVotes == 0 || !stats.IsFinite(agg.ValidVotes) {
		return nil
	}
	ranked := make([]models.RankedParty, 0, len(agg.PartyVotes))
	for _, code := range orderedCodes(agg.PartyVotes, order) {
		votes := agg.PartyVotes[code]
		if !stats.IsFinite(votes) || votes <= 0 || isExcluded(code, excluded) {
			continue
		}
		ranked = append(ranked, models.RankedParty{Code: code, Share: votes / agg.ValidVotes, Votes: votes})
	}
	sortRanked(ranked)
	return ranked
}

// PartyRank returns the 1-based position of code in the unfiltered ranking
// of f together with its share; both are nil when the party is not ranked.
func PartyRank(c *Context, f *geojson.Feature, code string) (*int, *float64) {
	for i, p := range RankParties(c, f) {
		if p.Code == code {
			rank := i + 1
			share := p.Share
			return &rank, &share
		}
	}
	return nil, nil
}

// SharesForGranularity collects every finite share of code at the context's
// granularity, over records (muni) or aggregates (pref, block) rather than
// over features.
func SharesForGranularity(c *Context, code string) []float64 {
	var out []float64
	g := c.Granularity()
	if g == models.GranularityMuni {
		for _, muni := range c.Dataset.MunicipalityCodes() {
			share, ok := c.Dataset.Municipalities[muni].Parties[code]
			if ok && !math.IsNaN(share) {
				out = append(out, share)
			}
		}
		return out
	}

	aggs := c.Aggregates.For(g)
	names := make([]string, 0, len(aggs))
	for name := range aggs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if share := aggs[name].Share(code); share != nil {
			out = append(out, *share)
		}
	}
	return out
}

func sortRanked(ranked []models.RankedParty) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Share > ranked[j].Share
	})
}

// orderedCodes lists the keys of m in roster order, followed by codes the
// roster does not name in ascending order.
func orderedCodes(m map[string]float64, roster []string) []string {
	codes := make([]string, 0, len(m))
	seen := make(map[string]bool, len(roster))
	for _, code := range roster {
		if _, ok := m[code]; ok && !seen[code] {
			codes = append(codes, code)
		}
		seen[code] = true
	}
	var rest []string
	for code := range m {
		if !seen[code] {
			rest = append(rest, code)
		}
	}
	sort.Strings(rest)
	return append(codes, rest...)
}

func isExcluded(code string, excluded []string) bool {
	for _, e := range excluded {
		if e == code {
			return true
		}
	}
	return false
}
