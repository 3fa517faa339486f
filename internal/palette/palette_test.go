package palette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

func f(v float64) *float64 { return &v }

func TestPalette_AtEndpoints(t *testing.T) {
	assert.Equal(t, "#ece5e0", Share.At(0))
	assert.Equal(t, "#001261", Share.At(1))
	assert.Equal(t, "#001261", Share.At(5))
	assert.Equal(t, "#ece5e0", Share.At(-1))
}

func TestPalette_AtMidpointRoundsPerChannel(t *testing.T) {
	p := MustParse("#000000", "#ffffff")
	// 127.5 rounds up
	assert.Equal(t, "#808080", p.At(0.5))

	p = MustParse("#000000", "#0a0a0a", "#141414")
	assert.Equal(t, "#0a0a0a", p.At(0.5))
	assert.Equal(t, "#050505", p.At(0.25))
}

func TestParse_RejectsMalformed(t *testing.T) {
	_, err := Parse("#zzzzzz")
	assert.Error(t, err)

	_, err = Parse()
	assert.Error(t, err)
}

func TestPalette_Stops(t *testing.T) {
	stops := Diverging.Stops()
	require.Len(t, stops, 7)
	assert.Equal(t, 0.0, stops[0].Offset)
	assert.InDelta(t, 50.0, stops[3].Offset, 1e-9)
	assert.Equal(t, 100.0, stops[6].Offset)
	assert.Equal(t, "#f7f7f7", stops[3].Color)
}

func TestColorFor_NoData(t *testing.T) {
	assert.Equal(t, NoDataColor, ColorFor(nil, 1, Share, LinearGamma))
	assert.Equal(t, NoDataColor, ColorFor(f(math.NaN()), 1, Share, LinearGamma))
}

func TestColorFor_NormalizesAgainstMax(t *testing.T) {
	assert.Equal(t, "#001261", ColorFor(f(0.5), 0.4, Share, LinearGamma))
	assert.Equal(t, "#ece5e0", ColorFor(f(0), 0.4, Share, LinearGamma))
	assert.Equal(t, "#ece5e0", ColorFor(f(0.3), 0, Share, LinearGamma))
	assert.Equal(t, Share.At(0.5), ColorFor(f(0.2), 0.4, Share, LinearGamma))
	assert.Equal(t, Share.At(math.Pow(0.5, ProgressGamma)), ColorFor(f(0.2), 0.4, Share, ProgressGamma))
}

func TestSignedColor_Diverging(t *testing.T) {
	domain := models.ScaleDomain{Min: -0.2, Max: 0.2, CrossesZero: true}

	assert.Equal(t, "#f7f7f7", SignedColor(f(0), domain))
	assert.Equal(t, "#7a1f73", SignedColor(f(0.5), domain))
	assert.Equal(t, "#1f6b3a", SignedColor(f(-0.2), domain))
	assert.Equal(t, NoDataColor, SignedColor(nil, domain))
}

func TestSignedColor_Sequential(t *testing.T) {
	positive := models.ScaleDomain{Min: 0, Max: 0.4}
	assert.Equal(t, "#ffffff", SignedColor(f(0), positive))
	assert.Equal(t, "#5f005c", SignedColor(f(1), positive))

	negative := models.ScaleDomain{Min: -0.4, Max: -0.1}
	assert.Equal(t, "#ffffff", SignedColor(f(0), negative))
	assert.Equal(t, "#005a24", SignedColor(f(-0.4), negative))
	assert.Equal(t, Worse, SignedPalette(negative))
	assert.Equal(t, Better, SignedPalette(positive))
}

func TestRankColor(t *testing.T) {
	one, three, five, nine := 1, 3, 5, 9

	assert.Equal(t, NoDataColor, RankColor(nil, 5))
	assert.Equal(t, "#001261", RankColor(&one, 5))
	assert.Equal(t, "#590008", RankColor(&five, 5))
	assert.Equal(t, "#590008", RankColor(&nine, 5))
	assert.Equal(t, PartyRank.At(0.5), RankColor(&three, 5))
	assert.Equal(t, "#001261", RankColor(&one, 0))
}

func TestPartyColors(t *testing.T) {
	colors := NewPartyColors([]models.Party{
		{Code: "zeta"}, {Code: "jimin"}, {Code: "alpha"},
	})

	assert.Equal(t, "#a5002d", colors.Color("jimin"))
	assert.Equal(t, "#1f77b4", colors.Color("alpha"))
	assert.Equal(t, "#ff7f0e", colors.Color("zeta"))
	assert.Equal(t, UnknownPartyColor, colors.Color("missing"))
	assert.Equal(t, UnknownPartyColor, colors.Color(""))
}
