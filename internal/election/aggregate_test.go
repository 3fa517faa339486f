package election

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

func TestBuildAggregates_SumsVoteCounts(t *testing.T) {
	records := map[string]models.MunicipalityRecord{
		"00001": {Pref: "P", ValidVotes: 100, Parties: map[string]float64{"A": 0.5}},
		"00002": {Pref: "P", ValidVotes: 200, Parties: map[string]float64{"A": 0.4}},
		"00003": {Pref: "P", ValidVotes: 300, Parties: map[string]float64{"A": 0.3}},
	}

	agg := BuildAggregates(records, map[string]string{"P": "B"})

	pref := agg.Pref["P"]
	require.NotNil(t, pref)
	assert.InDelta(t, 600, pref.ValidVotes, 1e-9)
	assert.InDelta(t, 220, pref.PartyVotes["A"], 1e-9)
	require.NotNil(t, pref.Share("A"))
	assert.InDelta(t, 0.3667, *pref.Share("A"), 1e-4)

	block := agg.Block["B"]
	require.NotNil(t, block)
	assert.InDelta(t, 600, block.ValidVotes, 1e-9)
	assert.InDelta(t, 220, block.PartyVotes["A"], 1e-9)
}

func TestBuildAggregates_Conservation(t *testing.T) {
	d := testDataset()
	agg := BuildAggregates(d.Municipalities, d.PrefToBlock)

	for pref, a := range agg.Pref {
		var want float64
		for _, rec := range d.Municipalities {
			if rec.Pref == pref {
				want += rec.ValidVotes
			}
		}
		assert.InDelta(t, want, a.ValidVotes, 1e-9, pref)
	}

	var prefTotal, blockTotal float64
	for _, a := range agg.Pref {
		prefTotal += a.ValidVotes
	}
	for _, a := range agg.Block {
		blockTotal += a.ValidVotes
	}
	assert.InDelta(t, prefTotal, blockTotal, 1e-9)
}

func TestBuildAggregates_SkipsInvalidRecords(t *testing.T) {
	records := map[string]models.MunicipalityRecord{
		"00001": {Pref: "P", ValidVotes: 100, Parties: map[string]float64{"A": 0.5, "B": math.NaN()}},
		"00002": {Pref: "", ValidVotes: 100, Parties: map[string]float64{"A": 1}},
		"00003": {Pref: "P", ValidVotes: 0, Parties: map[string]float64{"A": 1}},
		"00004": {Pref: "P", ValidVotes: math.Inf(1), Parties: map[string]float64{"A": 1}},
		"00005": {Pref: "Q", ValidVotes: 50, Parties: map[string]float64{"A": 1}},
	}

	agg := BuildAggregates(records, map[string]string{"P": "B"})

	require.Len(t, agg.Pref, 2)
	assert.InDelta(t, 100, agg.Pref["P"].ValidVotes, 1e-9)
	assert.InDelta(t, 50, agg.Pref["P"].PartyVotes["A"], 1e-9)
	_, hasNaN := agg.Pref["P"].PartyVotes["B"]
	assert.False(t, hasNaN)

	// Q has no bloc mapping
	require.Len(t, agg.Block, 1)
	assert.InDelta(t, 100, agg.Block["B"].ValidVotes, 1e-9)
}

func TestAggregate_ShareMissing(t *testing.T) {
	var nilAgg *models.Aggregate
	assert.Nil(t, nilAgg.Share("A"))
	assert.Nil(t, (&models.Aggregate{PartyVotes: map[string]float64{"A": 1}}).Share("A"))
	assert.Nil(t, (&models.Aggregate{ValidVotes: 10, PartyVotes: map[string]float64{}}).Share("A"))
}
