package election

import (
	"sort"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// Extreme is a labeled min or max row of a summary
type Extreme struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// PartyCount counts the regions a party occupies in rank modes
type PartyCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RankCount counts the regions where the selected party holds a rank
type RankCount struct {
	Rank  int `json:"rank"`
	Count int `json:"count"`
}

// Summary is the stats panel of one render pass. Which fields are set
// depends on the mode; NoData is true when no feature carried a value.
type Summary struct {
	Mode        models.Mode        `json:"mode"`
	Granularity models.Granularity `json:"granularity"`
	NoData      bool               `json:"no_data"`
	Count       int                `json:"count"`

	Party *models.Party `json:"party,omitempty"`

	Average     *float64 `json:"average,omitempty"`
	AverageText string   `json:"average_text,omitempty"`
	Min         *Extreme `json:"min,omitempty"`
	Max         *Extreme `json:"max,omitempty"`

	EffectivePartyCount     *float64 `json:"effective_party_count,omitempty"`
	EffectivePartyCountText string   `json:"effective_party_count_text,omitempty"`

	Most  *PartyCount `json:"most,omitempty"`
	Least *PartyCount `json:"least,omitempty"`

	FirstPlaceCount *int       `json:"first_place_count,omitempty"`
	ModalRank       *RankCount `json:"modal_rank,omitempty"`
}

type metricRow struct {
	label string
	value float64
}

func newSummary(c *Context) Summary {
	return Summary{Mode: c.Params.Mode, Granularity: c.Granularity()}
}

// collect keeps rows where pick returns a value
func collect(rows []models.RenderStats, pick func(models.RenderStats) *float64) []metricRow {
	out := make([]metricRow, 0, len(rows))
	for _, s := range rows {
		if v := pick(s); v != nil {
			out = append(out, metricRow{label: s.Label, value: *v})
		}
	}
	return out
}

// fillExtremes sets the average and the first minimum and maximum rows
func fillExtremes(sum *Summary, rows []metricRow, format func(float64) string) {
	sum.Count = len(rows)
	if len(rows) == 0 {
		sum.NoData = true
		return
	}
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.value
	}
	avg := stats.Mean(vals)
	min, max := rows[stats.ArgMin(vals)], rows[stats.ArgMax(vals)]
	sum.Average = &avg
	sum.AverageText = format(avg)
	sum.Min = &Extreme{Label: min.label, Value: min.value, Text: format(min.value)}
	sum.Max = &Extreme{Label: max.label, Value: max.value, Text: format(max.value)}
}

func summarizeShare(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	if p, ok := c.Dataset.Party(c.Params.Party); ok {
		sum.Party = &p
	}
	fillExtremes(&sum, collect(rows, func(s models.RenderStats) *float64 { return s.Share }), PctLabel)
	return sum
}

func summarizeComparison(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	metric := c.Params.SelectedMetric
	if c.Params.Mode == models.ModeRulingVsOpposition {
		metric = c.Params.RulingMetric
	}
	if metric == models.MetricRatio {
		pick := func(s models.RenderStats) *float64 { return s.Ratio }
		fillExtremes(&sum, collect(rows, pick), func(v float64) string { return RatioLabel(&v) })
		return sum
	}
	pick := func(s models.RenderStats) *float64 { return s.Gap }
	fillExtremes(&sum, collect(rows, pick), func(v float64) string { return PPSigned(&v) })
	return sum
}

func summarizeConcentration(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	fillExtremes(&sum, collect(rows, func(s models.RenderStats) *float64 { return s.Concentration }), Fixed3)
	if sum.Average != nil && *sum.Average > 0 {
		eff := 1 / *sum.Average
		sum.EffectivePartyCount = &eff
		sum.EffectivePartyCountText = fixed(eff, 2)
	} else if !sum.NoData {
		sum.EffectivePartyCountText = NotAvailable
	}
	return sum
}

func summarizeMargin(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	fillExtremes(&sum, collect(rows, func(s models.RenderStats) *float64 { return s.Margin }), PPLabel)
	return sum
}

func summarizeDivergence(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	fillExtremes(&sum, collect(rows, func(s models.RenderStats) *float64 { return s.NationalDivergence }), Fixed3)
	return sum
}

// PartyCounts counts how many features each party occupies, most first.
// Ties keep first-seen feature order.
func PartyCounts(c *Context, rows []models.RenderStats) []PartyCount {
	index := map[string]int{}
	var counts []PartyCount
	for _, s := range rows {
		if s.PartyCode == "" {
			continue
		}
		i, ok := index[s.PartyCode]
		if !ok {
			i = len(counts)
			index[s.PartyCode] = i
			counts = append(counts, PartyCount{Code: s.PartyCode, Name: c.Dataset.PartyName(s.PartyCode)})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func summarizeRank(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	counts := PartyCounts(c, rows)
	sum.Count = len(counts)
	if len(counts) == 0 {
		sum.NoData = true
		return sum
	}
	most, least := counts[0], counts[len(counts)-1]
	sum.Most = &most
	sum.Least = &least
	return sum
}

// RankCounts counts features per rank of the selected party, by rank
func RankCounts(rows []models.RenderStats) []RankCount {
	m := map[int]int{}
	for _, s := range rows {
		if s.Rank != nil {
			m[*s.Rank]++
		}
	}
	out := make([]RankCount, 0, len(m))
	for rank, n := range m {
		out = append(out, RankCount{Rank: rank, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

func summarizePartyRank(c *Context, rows []models.RenderStats) Summary {
	sum := newSummary(c)
	counts := RankCounts(rows)
	first := 0
	var modal *RankCount
	for i, rc := range counts {
		sum.Count += rc.Count
		if rc.Rank == 1 {
			first = rc.Count
		}
		// counts are ordered by rank, so ties resolve to the better rank
		if modal == nil || rc.Count > modal.Count {
			modal = &counts[i]
		}
	}
	sum.FirstPlaceCount = &first
	sum.ModalRank = modal
	sum.NoData = modal == nil
	return sum
}
