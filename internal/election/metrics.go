package election

import (
	"math"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// Every metric below works on an unfiltered ranking and returns nil
// pointers rather than zero when the inputs are missing.

// Gap compares a selected party against a target party at one feature
type Gap struct {
	Gap             *float64
	SelectedShare   *float64
	TargetShare     *float64
	TargetPartyCode string
}

// Comparison is a Gap plus its ratio form and the value fed to the scale
type Comparison struct {
	Gap
	Ratio    *float64
	LogRatio *float64
	Value    *float64
}

// SelectedGap computes selected minus target. target is either CompareTop
// or a party code; an empty target, or a selected or target party missing
// from the ranking, yields an all-nil Gap.
func SelectedGap(ranked []models.RankedParty, selected, target string) Gap {
	if len(ranked) == 0 {
		return Gap{}
	}
	sel, ok := findRanked(ranked, selected)
	if !ok {
		return Gap{}
	}

	tgt := ranked[0]
	if target != models.CompareTop {
		if tgt, ok = findRanked(ranked, target); !ok {
			return Gap{}
		}
	}
	return Gap{
		Gap:             ptr(sel.Share - tgt.Share),
		SelectedShare:   ptr(sel.Share),
		TargetShare:     ptr(tgt.Share),
		TargetPartyCode: tgt.Code,
	}
}

// SelectedValue extends a Gap with the ratio and log ratio. In ratio mode
// the log ratio drives the color scale, otherwise the gap does.
func SelectedValue(g Gap, metric models.MetricMode) Comparison {
	if metric != models.MetricRatio {
		return Comparison{Gap: g, Value: g.Gap}
	}
	ratio, logRatio := Ratio(g.SelectedShare, g.TargetShare)
	return Comparison{Gap: g, Ratio: ratio, LogRatio: logRatio, Value: logRatio}
}

// Ratio returns num/den and its natural log. Both are nil unless den > 0;
// the log is also nil when the ratio is zero.
func Ratio(num, den *float64) (ratio, logRatio *float64) {
	if num == nil || den == nil || !(*den > 0) || math.IsNaN(*num) {
		return nil, nil
	}
	r := *num / *den
	ratio = &r
	if r > 0 && !math.IsInf(r, 0) {
		logRatio = ptr(math.Log(r))
	}
	return ratio, logRatio
}

// Bloc splits a ranking into ruling-bloc and opposition share sums
type Bloc struct {
	Gap             *float64
	RulingShare     *float64
	OppositionShare *float64
}

// RulingOpposition sums shares of RulingBloc members against everyone else
func RulingOpposition(ranked []models.RankedParty) Bloc {
	if len(ranked) == 0 {
		return Bloc{}
	}
	var ruling, opposition float64
	for _, p := range ranked {
		if RulingBloc[p.Code] {
			ruling += p.Share
		} else {
			opposition += p.Share
		}
	}
	return Bloc{
		Gap:             ptr(ruling - opposition),
		RulingShare:     ptr(ruling),
		OppositionShare: ptr(opposition),
	}
}

// RulingValue returns the value fed to the scale for a bloc split
func RulingValue(b Bloc, metric models.MetricMode) (value, ratio, logRatio *float64) {
	ratio, logRatio = Ratio(b.RulingShare, b.OppositionShare)
	if metric == models.MetricRatio {
		return logRatio, ratio, logRatio
	}
	return b.Gap, ratio, logRatio
}

// Concentration returns the Herfindahl-Hirschman index of a ranking and
// the effective number of parties 1/HHI.
func Concentration(ranked []models.RankedParty) (hhi, effective *float64) {
	if len(ranked) == 0 {
		return nil, nil
	}
	shares := make([]float64, len(ranked))
	for i, p := range ranked {
		shares[i] = p.Share
	}
	h := stats.HHI(shares)
	hhi = &h
	if h > 0 {
		effective = ptr(1 / h)
	}
	return hhi, effective
}

// Margin is the lead of the first party over the second
type Margin struct {
	Margin   *float64
	Winner   *models.RankedParty
	RunnerUp *models.RankedParty
}

// WinnerMargin needs at least two ranked parties
func WinnerMargin(ranked []models.RankedParty) Margin {
	if len(ranked) < 2 {
		return Margin{}
	}
	winner, runnerUp := ranked[0], ranked[1]
	return Margin{
		Margin:   ptr(winner.Share - runnerUp.Share),
		Winner:   &winner,
		RunnerUp: &runnerUp,
	}
}

// ShareMap turns a ranking into a code to share lookup, nil when empty
func ShareMap(ranked []models.RankedParty) map[string]float64 {
	if len(ranked) == 0 {
		return nil
	}
	m := make(map[string]float64, len(ranked))
	for _, p := range ranked {
		m[p.Code] = p.Share
	}
	return m
}

// NationalDivergence is the Jensen-Shannon distance between the local and
// national distributions over the roster codes.
func NationalDivergence(ranked []models.RankedParty, national map[string]float64, codes []string) *float64 {
	local := ShareMap(ranked)
	if local == nil || national == nil {
		return nil
	}
	d, ok := stats.JSDistance(local, national, codes)
	if !ok {
		return nil
	}
	return &d
}

func findRanked(ranked []models.RankedParty, code string) (models.RankedParty, bool) {
	if code == "" {
		return models.RankedParty{}, false
	}
	for _, p := range ranked {
		if p.Code == code {
			return p, true
		}
	}
	return models.RankedParty{}, false
}

func ptr[T any](v T) *T {
	return &v
}
