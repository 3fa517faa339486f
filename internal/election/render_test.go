package election

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/palette"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
)

func render(t *testing.T, p models.ModeParams) (*Context, *Result) {
	t.Helper()
	c := testContext(p)
	res, err := Render(c)
	require.NoError(t, err)
	return c, res
}

func TestHandlerFor_CoversEveryMode(t *testing.T) {
	for _, m := range models.AllModes {
		h, err := HandlerFor(m)
		require.NoError(t, err, m)
		assert.NotNil(t, h.Stats, m)
		assert.NotNil(t, h.Scale, m)
		assert.NotNil(t, h.Color, m)
		assert.NotNil(t, h.Summary, m)
	}

	_, err := HandlerFor("bogus")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestHandlerFor_SequentialModesShareScale(t *testing.T) {
	rows := []models.RenderStats{{Value: ptr(-0.2)}, {Value: ptr(0.4)}, {Value: nil}}
	for _, m := range []models.Mode{models.ModeConcentration, models.ModeWinnerMargin, models.ModeJSDivergence} {
		require.True(t, m.IsSequentialMode(), m)
		h, err := HandlerFor(m)
		require.NoError(t, err, m)

		d := h.Scale(nil, rows)
		assert.Equal(t, 0.0, d.Min, m)
		assert.False(t, d.CrossesZero, m)
		assert.Equal(t, SequentialScale([]float64{-0.2, 0.4}), d, m)
		assert.Equal(t, palette.NoDataColor, h.Color(nil, rows[2], d), m)
	}
	assert.False(t, models.ModeShare.IsSequentialMode())
}

func TestRender_ShareMode(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeShare, Party: "mirai", ScaleMode: models.ScaleFixed})

	require.Len(t, res.Features, 4)
	assert.Equal(t, "01001", res.Features[0].Key)
	assert.Equal(t, "北海道札幌市", res.Features[0].Stats.Label)
	assert.Equal(t, "東京都千代田区", res.Features[2].Stats.Label)
	assert.InDelta(t, 0.3, *res.Features[0].Stats.Value, 1e-12)
	assert.InDelta(t, 100, *res.Features[0].Stats.ValidVotes, 1e-12)
	assert.Equal(t, "みらい", res.Features[0].Stats.PartyName)

	missing := res.Features[3]
	assert.Nil(t, missing.Stats.Share)
	assert.Nil(t, missing.Stats.ValidVotes)
	assert.Equal(t, "架空県無名村", missing.Stats.Label)
	assert.Equal(t, palette.NoDataColor, missing.Color)

	assert.Equal(t, 0.4, res.Scale.Max)
	want := palette.ColorFor(f64(0.5), 0.4, palette.Share, palette.LinearGamma)
	assert.Equal(t, want, res.Features[1].Color)

	sum := res.Summary(c)
	require.NotNil(t, sum.Party)
	assert.Equal(t, "mirai", sum.Party.Code)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "36.7 %", sum.AverageText)
	assert.Equal(t, "北海道札幌市", sum.Min.Label)
	assert.Equal(t, "北海道函館市", sum.Max.Label)
	assert.Equal(t, "50.0 %", sum.Max.Text)

	lg := res.Legend(c)
	assert.Len(t, lg.Gradient, len(palette.Share))
	assert.Equal(t, &Axis{Low: "0 %", Mid: "20.0 %", High: "40.0 %"}, lg.Axis)
	assert.Empty(t, lg.Parity)
}

func TestRender_SharePrefUsesAggregates(t *testing.T) {
	_, res := render(t, models.ModeParams{Mode: models.ModeShare, Granularity: models.GranularityPref, Party: "jimin"})

	require.Len(t, res.Features, 2)
	assert.Equal(t, "北海道", res.Features[0].Stats.Label)
	assert.InDelta(t, 90.0/300, *res.Features[0].Stats.Share, 1e-12)
	assert.InDelta(t, 300, *res.Features[0].Stats.ValidVotes, 1e-9)
}

func TestRender_PartyRank(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModePartyRank, Party: "mirai"})

	assert.Equal(t, 2, *res.Features[0].Stats.Rank)
	assert.Equal(t, 1, *res.Features[1].Stats.Rank)
	assert.Nil(t, res.Features[3].Stats.Rank)
	assert.Equal(t, 2, res.Scale.RankMax)
	assert.Equal(t, palette.PartyRank.First(), res.Features[1].Color)
	assert.Equal(t, palette.PartyRank.Last(), res.Features[0].Color)

	sum := res.Summary(c)
	assert.Equal(t, 1, *sum.FirstPlaceCount)
	assert.Equal(t, &RankCount{Rank: 2, Count: 2}, sum.ModalRank)

	lg := res.Legend(c)
	require.Len(t, lg.Swatches, 2)
	assert.Equal(t, 1, lg.Swatches[0].Count)
	assert.Equal(t, 2, lg.Swatches[1].Count)
	assert.Nil(t, lg.Axis)
}

func TestRender_RankModes(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeRank, Rank: 1})

	top := res.Features[0].Stats
	assert.Equal(t, "jimin", top.PartyCode)
	assert.Equal(t, 1, *top.ActualRank)
	assert.InDelta(t, 0.5, *top.Share, 1e-12)
	assert.Equal(t, c.Colors.Color("jimin"), res.Features[0].Color)
	assert.Equal(t, palette.NoDataColor, res.Features[3].Color)

	sum := res.Summary(c)
	assert.Equal(t, "jimin", sum.Most.Code)
	assert.Equal(t, 2, sum.Most.Count)
	assert.Equal(t, "mirai", sum.Least.Code)

	lg := res.Legend(c)
	require.Len(t, lg.Swatches, 2)
	assert.Equal(t, "jimin", lg.Swatches[0].PartyCode)

	_, res = render(t, models.ModeParams{Mode: models.ModeOppositionRank, Rank: 1})
	opp := res.Features[0].Stats
	assert.Equal(t, "mirai", opp.PartyCode)
	assert.Equal(t, 2, *opp.ActualRank)
	for _, f := range res.Features {
		assert.NotEqual(t, RulingPartyCode, f.Stats.PartyCode)
	}
}

func TestRender_RankBeyondRanking(t *testing.T) {
	_, res := render(t, models.ModeParams{Mode: models.ModeRank, Rank: 4})
	assert.Equal(t, "kokumin", res.Features[0].Stats.PartyCode)

	_, res = render(t, models.ModeParams{Mode: models.ModeOppositionRank, Rank: 4})
	assert.Empty(t, res.Features[0].Stats.PartyCode)
	assert.Nil(t, res.Features[0].Stats.Share)
	assert.Equal(t, palette.NoDataColor, res.Features[0].Color)
}

func TestRender_SelectedDiff(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeSelectedDiff, Party: "mirai", CompareTarget: models.CompareTop})

	s := res.Features[0].Stats
	assert.Equal(t, "jimin", s.TargetPartyCode)
	assert.Equal(t, "自民", s.TargetPartyName)
	assert.InDelta(t, -0.2, *s.Gap, 1e-12)
	assert.Equal(t, models.MetricDiff, s.MetricMode)
	assert.InDelta(t, 0, *res.Features[1].Stats.Gap, 1e-12)
	assert.True(t, res.Scale.CrossesZero)
	assert.InDelta(t, -res.Scale.Max, res.Scale.Min, 1e-12)
	assert.Equal(t, palette.SignedColor(s.Value, res.Scale), res.Features[0].Color)

	sum := res.Summary(c)
	assert.Equal(t, "北海道札幌市", sum.Min.Label)
	assert.Equal(t, "-20.0 pt", sum.Min.Text)

	lg := res.Legend(c)
	assert.Len(t, lg.Gradient, len(palette.Diverging))
	assert.Equal(t, "0", lg.Parity)
	assert.Equal(t, PPLabel(0), lg.Axis.Mid)
}

func TestRender_SelectedDiffRatio(t *testing.T) {
	c, res := render(t, models.ModeParams{
		Mode: models.ModeSelectedDiff, Party: "mirai", CompareTarget: "jimin", SelectedMetric: models.MetricRatio,
	})

	s := res.Features[0].Stats
	assert.InDelta(t, 0.6, *s.Ratio, 1e-12)
	assert.InDelta(t, math.Log(0.6), *s.Value, 1e-12)

	sum := res.Summary(c)
	assert.Equal(t, "0.60", sum.Min.Text)
	assert.Equal(t, "2.50", sum.Max.Text)

	lg := res.Legend(c)
	assert.Equal(t, "1.00", lg.Parity)
	assert.Equal(t, "1.00", lg.Axis.Mid)
}

func TestRender_SelectedDiffDefaults(t *testing.T) {
	_, res := render(t, models.ModeParams{Mode: models.ModeSelectedDiff})

	assert.Equal(t, DiffDefaultBase, res.Params.Party)
	assert.Equal(t, DiffDefaultTarget, res.Params.CompareTarget)
	assert.InDelta(t, 0, *res.Features[0].Stats.Gap, 1e-12)
}

func TestRender_SelectedDiffUnknownTarget(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeSelectedDiff, Party: "mirai", CompareTarget: "nobody"})

	for _, f := range res.Features {
		assert.Nil(t, f.Stats.Gap)
		assert.Equal(t, palette.NoDataColor, f.Color)
	}
	assert.Equal(t, SymmetricFloor, res.Scale.Max)
	assert.True(t, res.Summary(c).NoData)
}

func TestRender_RulingVsOpposition(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeRulingVsOpposition})

	s := res.Features[0].Stats
	assert.InDelta(t, 0.6, *s.RulingShare, 1e-12)
	assert.InDelta(t, 0.4, *s.OppositionShare, 1e-12)
	assert.InDelta(t, 0.2, *s.Value, 1e-12)
	assert.InDelta(t, 1.5, *s.Ratio, 1e-12)
	assert.InDelta(t, 0.5, *s.Share, 1e-12)

	c.Params.RulingMetric = models.MetricRatio
	res, err := Render(c)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(1.5), *res.Features[0].Stats.Value, 1e-12)
	assert.Equal(t, "1.50", res.Summary(c).Max.Text)
}

func TestRender_SequentialModes(t *testing.T) {
	c, res := render(t, models.ModeParams{Mode: models.ModeConcentration})
	s := res.Features[0].Stats
	assert.InDelta(t, 0.36, *s.Concentration, 1e-12)
	assert.InDelta(t, 1/0.36, *s.EffectivePartyCount, 1e-9)
	assert.False(t, res.Scale.CrossesZero)
	sum := res.Summary(c)
	require.NotNil(t, sum.EffectivePartyCount)
	assert.InDelta(t, 1 / *sum.Average, *sum.EffectivePartyCount, 1e-12)
	assert.Equal(t, "0.000", res.Legend(c).Axis.Low)

	c, res = render(t, models.ModeParams{Mode: models.ModeWinnerMargin})
	s = res.Features[0].Stats
	assert.InDelta(t, 0.2, *s.Margin, 1e-12)
	assert.Equal(t, "jimin", s.WinnerPartyCode)
	assert.Equal(t, "mirai", s.RunnerUpPartyCode)
	assert.Equal(t, "0.0 pt", res.Legend(c).Axis.Low)

	c, res = render(t, models.ModeParams{Mode: models.ModeJSDivergence})
	tokyo := res.Features[2].Stats
	require.NotNil(t, tokyo.NationalDivergence)
	assert.InDelta(t, 0, *tokyo.NationalDivergence, 1e-12)
	assert.Greater(t, *res.Features[1].Stats.NationalDivergence, 0.0)
	sum = res.Summary(c)
	assert.Equal(t, "東京都千代田区", sum.Min.Label)
	assert.Equal(t, "0.000", sum.Min.Text)
}

func TestRender_EmptyGranularity(t *testing.T) {
	d := NewDataset(testParties(), nil, nil, nil)
	c := NewContext(d, BuildAggregates(d.Municipalities, d.PrefToBlock), models.ModeParams{Mode: models.ModeWinnerMargin})

	res, err := Render(c)
	require.NoError(t, err)
	assert.Empty(t, res.Features)
	assert.Equal(t, 1.0, res.Scale.Max)
	assert.True(t, res.Summary(c).NoData)
}

func TestLabels(t *testing.T) {
	c := testContext(models.ModeParams{})
	vp := spatial.NewViewport(spatial.Bounds{South: 34, West: 138, North: 45, East: 146}, 9)

	labels := Labels(c, vp, true)
	require.Len(t, labels, 3)
	assert.Equal(t, "札幌市", labels[0].Text)
	assert.Equal(t, "01001", labels[0].Key)
	assert.Equal(t, "東京都千代田区", labels[2].Text)
	// no geometry and no label coordinates: never labeled
	for _, l := range labels {
		assert.NotEqual(t, "99999", l.Key)
	}

	assert.Empty(t, Labels(c, spatial.NewViewport(vp.Bounds, 8), true))
	assert.Empty(t, Labels(c, vp, false))
}

func TestPartyRankLegend_Overflow(t *testing.T) {
	var rows []models.RenderStats
	for rank := 1; rank <= 12; rank++ {
		r := rank
		rows = append(rows, models.RenderStats{Rank: &r})
	}
	swatches := partyRankSwatches(rows, RankScale(12))

	require.Len(t, swatches, 11)
	tail := swatches[10]
	assert.True(t, tail.Overflow)
	assert.Equal(t, 11, tail.Rank)
	assert.Equal(t, 2, tail.Count)
}
