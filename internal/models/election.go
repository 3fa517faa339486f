package models

import "math"

// Granularity is the geographic level a choropleth is drawn at
type Granularity string

const (
	GranularityMuni  Granularity = "muni"
	GranularityPref  Granularity = "pref"
	GranularityBlock Granularity = "block"
)

// Valid reports whether g is one of the known granularities
func (g Granularity) Valid() bool {
	switch g {
	case GranularityMuni, GranularityPref, GranularityBlock:
		return true
	}
	return false
}

// Mode selects which metric drives the fill color of every feature
type Mode string

const (
	ModeShare              Mode = "share"
	ModePartyRank          Mode = "party_rank"
	ModeRank               Mode = "rank"
	ModeOppositionRank     Mode = "opposition_rank"
	ModeSelectedDiff       Mode = "selected_diff"
	ModeRulingVsOpposition Mode = "ruling_vs_opposition"
	ModeWinnerMargin       Mode = "winner_margin"
	ModeConcentration      Mode = "concentration"
	ModeJSDivergence       Mode = "js_divergence"
)

// AllModes lists every mode in display order
var AllModes = []Mode{
	ModeShare,
	ModePartyRank,
	ModeRank,
	ModeOppositionRank,
	ModeSelectedDiff,
	ModeRulingVsOpposition,
	ModeWinnerMargin,
	ModeConcentration,
	ModeJSDivergence,
}

// Valid reports whether m is one of the nine known modes
func (m Mode) Valid() bool {
	for _, known := range AllModes {
		if m == known {
			return true
		}
	}
	return false
}

// IsRankMode reports whether features are colored by party identity
func (m Mode) IsRankMode() bool {
	return m == ModeRank || m == ModeOppositionRank
}

// IsDiffMode reports whether the mode uses a signed, zero-centered scale
func (m Mode) IsDiffMode() bool {
	return m == ModeSelectedDiff || m == ModeRulingVsOpposition
}

// IsSequentialMode reports whether the mode uses a [0, q95] scale
func (m Mode) IsSequentialMode() bool {
	return m == ModeConcentration || m == ModeWinnerMargin || m == ModeJSDivergence
}

// MetricMode chooses between a difference and a log ratio for comparison modes
type MetricMode string

const (
	MetricDiff  MetricMode = "diff"
	MetricRatio MetricMode = "ratio"
)

// ScaleMode chooses between shared and per-party breakpoints in share mode
type ScaleMode string

const (
	ScaleFixed ScaleMode = "fixed"
	ScaleParty ScaleMode = "party"
)

// CompareTop compares the selected party against the top-ranked party
const CompareTop = "top"

// Party is one entry of the party roster
type Party struct {
	Code           string  `json:"code" db:"code"`
	Name           string  `json:"name" db:"name"`
	TotalVotes     float64 `json:"total_votes" db:"total_votes"`
	Municipalities int     `json:"municipalities" db:"municipalities"`
}

// MunicipalityRecord holds raw results for one municipality.
// Parties maps party code to vote share in [0, 1].
type MunicipalityRecord struct {
	Name       string             `json:"name" db:"name"`
	Pref       string             `json:"pref" db:"pref"`
	ValidVotes float64            `json:"valid_votes" db:"valid_votes"`
	Parties    map[string]float64 `json:"parties"`
}

// Aggregate accumulates vote counts (not shares) for a prefecture or bloc
type Aggregate struct {
	ValidVotes float64            `json:"valid_votes"`
	PartyVotes map[string]float64 `json:"party_votes"`
}

// Share returns partyVotes/validVotes, or nil when either side is missing
func (a *Aggregate) Share(code string) *float64 {
	if a == nil || a.ValidVotes == 0 || a.PartyVotes == nil {
		return nil
	}
	votes, ok := a.PartyVotes[code]
	if !ok || math.IsNaN(votes) {
		return nil
	}
	share := votes / a.ValidVotes
	return &share
}

// RankedParty is one row of a per-feature ranking
type RankedParty struct {
	Code  string  `json:"code"`
	Share float64 `json:"share"`
	Votes float64 `json:"votes"`
}

// FeatureStats is the mode-independent part of a feature's render stats
type FeatureStats struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Share      *float64 `json:"share"`
	ValidVotes *float64 `json:"valid_votes"`
}

// RenderStats is the per-feature output consumed by the map and popups.
// Value is the number the color scale is applied to; nil means no data.
type RenderStats struct {
	FeatureStats

	Value *float64 `json:"value"`

	PartyCode string `json:"party_code,omitempty"`
	PartyName string `json:"party_name,omitempty"`

	Rank       *int `json:"rank,omitempty"`
	ActualRank *int `json:"actual_rank,omitempty"`

	Gap             *float64 `json:"gap,omitempty"`
	Ratio           *float64 `json:"ratio,omitempty"`
	LogRatio        *float64 `json:"log_ratio,omitempty"`
	SelectedShare   *float64 `json:"selected_share,omitempty"`
	TargetShare     *float64 `json:"target_share,omitempty"`
	TargetPartyCode string   `json:"target_party_code,omitempty"`
	TargetPartyName string   `json:"target_party_name,omitempty"`

	RulingShare     *float64 `json:"ruling_share,omitempty"`
	OppositionShare *float64 `json:"opposition_share,omitempty"`

	Concentration       *float64 `json:"concentration,omitempty"`
	EffectivePartyCount *float64 `json:"effective_party_count,omitempty"`

	Margin             *float64 `json:"margin,omitempty"`
	WinnerPartyCode    string   `json:"winner_party_code,omitempty"`
	WinnerShare        *float64 `json:"winner_share,omitempty"`
	RunnerUpPartyCode  string   `json:"runner_up_party_code,omitempty"`
	RunnerUpShare      *float64 `json:"runner_up_share,omitempty"`
	NationalDivergence *float64 `json:"national_divergence,omitempty"`

	MetricMode MetricMode `json:"metric_mode,omitempty"`
}

// ScaleDomain is the numeric range a palette is stretched across
type ScaleDomain struct {
	Breaks      []float64 `json:"breaks,omitempty"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	CrossesZero bool      `json:"crosses_zero"`
	RankMax     int       `json:"rank_max,omitempty"`
}

// ModeParams carries every user-controlled parameter of a render pass
type ModeParams struct {
	Mode           Mode        `form:"mode" json:"mode"`
	Granularity    Granularity `form:"granularity" json:"granularity"`
	Party          string      `form:"party" json:"party"`
	CompareTarget  string      `form:"compare" json:"compare"`
	SelectedMetric MetricMode  `form:"selected_metric" json:"selected_metric"`
	RulingMetric   MetricMode  `form:"ruling_metric" json:"ruling_metric"`
	ScaleMode      ScaleMode   `form:"scale" json:"scale"`
	Rank           int         `form:"rank" json:"rank"`
}
