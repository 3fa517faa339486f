package election

import (
	"math"
	"sort"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// Aggregates holds prefecture and bloc totals keyed by name
type Aggregates struct {
	Pref  map[string]*models.Aggregate
	Block map[string]*models.Aggregate
}

// For returns the aggregate map of a coarse granularity, nil for muni
func (a Aggregates) For(g models.Granularity) map[string]*models.Aggregate {
	switch g {
	case models.GranularityPref:
		return a.Pref
	case models.GranularityBlock:
		return a.Block
	}
	return nil
}

// BuildAggregates rolls municipality records up into prefecture and bloc
// vote counts. Records without a prefecture or with a non-finite or
// non-positive valid vote count are skipped, as are non-finite shares.
// Prefectures missing from prefToBlock are left out of the bloc totals.
func BuildAggregates(records map[string]models.MunicipalityRecord, prefToBlock map[string]string) Aggregates {
	agg := Aggregates{
		Pref:  map[string]*models.Aggregate{},
		Block: map[string]*models.Aggregate{},
	}

	// sorted keys keep float summation order stable between runs
	codes := make([]string, 0, len(records))
	for code := range records {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rec := records[code]
		if rec.Pref == "" || !stats.IsFinite(rec.ValidVotes) || rec.ValidVotes <= 0 {
			continue
		}
		pref := ensureAggregate(agg.Pref, rec.Pref)
		pref.ValidVotes += rec.ValidVotes
		for party, share := range rec.Parties {
			if math.IsNaN(share) || math.IsInf(share, 0) {
				continue
			}
			pref.PartyVotes[party] += share * rec.ValidVotes
		}
	}

	prefs := make([]string, 0, len(agg.Pref))
	for name := range agg.Pref {
		prefs = append(prefs, name)
	}
	sort.Strings(prefs)

	for _, name := range prefs {
		blockName, ok := prefToBlock[name]
		if !ok || blockName == "" {
			continue
		}
		pref := agg.Pref[name]
		block := ensureAggregate(agg.Block, blockName)
		block.ValidVotes += pref.ValidVotes
		for party, votes := range pref.PartyVotes {
			block.PartyVotes[party] += votes
		}
	}

	return agg
}

func ensureAggregate(m map[string]*models.Aggregate, key string) *models.Aggregate {
	a, ok := m[key]
	if !ok {
		a = &models.Aggregate{PartyVotes: map[string]float64{}}
		m[key] = a
	}
	return a
}
