package election

import (
	"fmt"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/palette"
)

// ModeHandler bundles what a mode contributes to a render pass: per-feature
// stats, the scale domain over those stats, a fill color per feature and the
// stats-panel summary.
type ModeHandler struct {
	Stats   func(c *Context, f *geojson.Feature) models.RenderStats
	Scale   func(c *Context, rows []models.RenderStats) models.ScaleDomain
	Color   func(c *Context, s models.RenderStats, domain models.ScaleDomain) string
	Summary func(c *Context, rows []models.RenderStats) Summary
}

// handlers registers each mode. Sequential modes leave Scale and Color
// unset; HandlerFor gives them the shared [0, q95] scale and share palette.
var handlers = map[models.Mode]ModeHandler{
	models.ModeShare: {
		Stats:   shareStats,
		Scale:   shareScale,
		Color:   sequentialColor,
		Summary: summarizeShare,
	},
	models.ModePartyRank: {
		Stats:   partyRankStats,
		Scale:   partyRankScale,
		Color:   partyRankColor,
		Summary: summarizePartyRank,
	},
	models.ModeRank: {
		Stats:   rankStats,
		Scale:   identityScale,
		Color:   identityColor,
		Summary: summarizeRank,
	},
	models.ModeOppositionRank: {
		Stats:   rankStats,
		Scale:   identityScale,
		Color:   identityColor,
		Summary: summarizeRank,
	},
	models.ModeSelectedDiff: {
		Stats:   selectedDiffStats,
		Scale:   symmetricScale,
		Color:   signedColor,
		Summary: summarizeComparison,
	},
	models.ModeRulingVsOpposition: {
		Stats:   rulingStats,
		Scale:   symmetricScale,
		Color:   signedColor,
		Summary: summarizeComparison,
	},
	models.ModeWinnerMargin: {
		Stats:   winnerMarginStats,
		Summary: summarizeMargin,
	},
	models.ModeConcentration: {
		Stats:   concentrationStats,
		Summary: summarizeConcentration,
	},
	models.ModeJSDivergence: {
		Stats:   divergenceStats,
		Summary: summarizeDivergence,
	},
}

// HandlerFor looks up the handler of a mode
func HandlerFor(mode models.Mode) (ModeHandler, error) {
	h, ok := handlers[mode]
	if !ok {
		return ModeHandler{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if mode.IsSequentialMode() {
		h.Scale = sequentialScale
		h.Color = sequentialColor
	}
	return h, nil
}

// ExcludedFor returns the party codes a rank mode leaves out
func ExcludedFor(mode models.Mode) []string {
	if mode == models.ModeOppositionRank {
		return []string{RulingPartyCode}
	}
	return nil
}

func baseStats(c *Context, f *geojson.Feature, code string) models.RenderStats {
	return models.RenderStats{
		FeatureStats: FeatureStats(c, f, code),
		PartyCode:    code,
		PartyName:    c.Dataset.PartyName(code),
	}
}

func shareStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	s.Value = s.Share
	return s
}

func partyRankStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	s.Rank, s.Share = PartyRank(c, f, c.Params.Party)
	if s.Rank != nil {
		s.Value = ptr(float64(*s.Rank))
	}
	return s
}

// rankStats picks the party at position Params.Rank. Share and PartyCode
// describe that party, and ActualRank is its place in the unfiltered ranking.
func rankStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := models.RenderStats{FeatureStats: FeatureStats(c, f, c.Params.Party)}
	s.Rank = ptr(c.Params.Rank)
	s.Share = nil

	ranked := RankParties(c, f, ExcludedFor(c.Params.Mode)...)
	if c.Params.Rank < 1 || c.Params.Rank > len(ranked) {
		return s
	}
	chosen := ranked[c.Params.Rank-1]
	s.PartyCode = chosen.Code
	s.PartyName = c.Dataset.PartyName(chosen.Code)
	s.Share = ptr(chosen.Share)
	s.Value = s.Share
	s.ActualRank, _ = PartyRank(c, f, chosen.Code)
	return s
}

func selectedDiffStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	cmp := SelectedValue(
		SelectedGap(RankParties(c, f), c.Params.Party, c.compareTarget()),
		c.Params.SelectedMetric,
	)
	s.Gap = cmp.Gap.Gap
	s.SelectedShare = cmp.SelectedShare
	s.TargetShare = cmp.TargetShare
	s.TargetPartyCode = cmp.TargetPartyCode
	if cmp.TargetPartyCode != "" {
		s.TargetPartyName = c.Dataset.PartyName(cmp.TargetPartyCode)
	}
	s.Ratio = cmp.Ratio
	s.LogRatio = cmp.LogRatio
	s.Value = cmp.Value
	s.MetricMode = c.Params.SelectedMetric
	return s
}

// compareTarget resolves the compare target to CompareTop, a roster code,
// or "" when the requested party is unknown.
func (c *Context) compareTarget() string {
	t := c.Params.CompareTarget
	if t == models.CompareTop || c.Dataset.HasParty(t) {
		return t
	}
	return ""
}

func rulingStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, RulingPartyCode)
	bloc := RulingOpposition(RankParties(c, f))
	s.Gap = bloc.Gap
	s.RulingShare = bloc.RulingShare
	s.OppositionShare = bloc.OppositionShare
	s.Value, s.Ratio, s.LogRatio = RulingValue(bloc, c.Params.RulingMetric)
	s.MetricMode = c.Params.RulingMetric
	return s
}

func concentrationStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	s.Concentration, s.EffectivePartyCount = Concentration(RankParties(c, f))
	s.Value = s.Concentration
	return s
}

func winnerMarginStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	m := WinnerMargin(RankParties(c, f))
	s.Margin = m.Margin
	if m.Winner != nil {
		s.WinnerPartyCode = m.Winner.Code
		s.WinnerShare = ptr(m.Winner.Share)
		s.RunnerUpPartyCode = m.RunnerUp.Code
		s.RunnerUpShare = ptr(m.RunnerUp.Share)
	}
	s.Value = m.Margin
	return s
}

func divergenceStats(c *Context, f *geojson.Feature) models.RenderStats {
	s := baseStats(c, f, c.Params.Party)
	s.NationalDivergence = NationalDivergence(RankParties(c, f), c.national, c.partyCodes)
	s.Value = s.NationalDivergence
	return s
}

func shareScale(c *Context, _ []models.RenderStats) models.ScaleDomain {
	return ShareScale(SharesForGranularity(c, c.Params.Party), c.Params.ScaleMode)
}

func partyRankScale(_ *Context, rows []models.RenderStats) models.ScaleDomain {
	maxRank := 1
	for _, s := range rows {
		if s.Rank != nil && *s.Rank > maxRank {
			maxRank = *s.Rank
		}
	}
	return RankScale(maxRank)
}

func identityScale(_ *Context, _ []models.RenderStats) models.ScaleDomain {
	return models.ScaleDomain{Min: 0, Max: 1}
}

func symmetricScale(_ *Context, rows []models.RenderStats) models.ScaleDomain {
	return SymmetricScale(values(rows))
}

func sequentialScale(_ *Context, rows []models.RenderStats) models.ScaleDomain {
	return SequentialScale(values(rows))
}

func values(rows []models.RenderStats) []float64 {
	out := make([]float64, 0, len(rows))
	for _, s := range rows {
		if s.Value != nil {
			out = append(out, *s.Value)
		}
	}
	return out
}

func sequentialColor(_ *Context, s models.RenderStats, d models.ScaleDomain) string {
	return palette.ColorFor(s.Value, d.Max, palette.Share, palette.LinearGamma)
}

func signedColor(_ *Context, s models.RenderStats, d models.ScaleDomain) string {
	return palette.SignedColor(s.Value, d)
}

func partyRankColor(_ *Context, s models.RenderStats, d models.ScaleDomain) string {
	return palette.RankColor(s.Rank, d.RankMax)
}

func identityColor(c *Context, s models.RenderStats, _ models.ScaleDomain) string {
	if s.PartyCode == "" {
		return palette.NoDataColor
	}
	return c.Colors.Color(s.PartyCode)
}
