package election

import (
	"errors"
	"fmt"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

// Party codes with special meaning in some modes
const (
	RulingPartyCode   = "jimin"
	DefaultPartyCode  = "mirai"
	DiffDefaultBase   = "kokumin"
	DiffDefaultTarget = "ishin"
	defaultRank       = 2
)

// RulingBloc is the set of party codes counted as government
var RulingBloc = map[string]bool{
	"jimin": true,
	"ishin": true,
}

var (
	// ErrUnknownMode is returned for a mode outside the nine known ones
	ErrUnknownMode = errors.New("election: unknown mode")
	// ErrUnknownGranularity is returned for a granularity other than muni, pref or block
	ErrUnknownGranularity = errors.New("election: unknown granularity")
)

// ValidateParams rejects modes and granularities that cannot be rendered.
// Empty values are allowed and filled in by SanitizeParams.
func ValidateParams(p models.ModeParams) error {
	if p.Mode != "" && !p.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}
	if p.Granularity != "" && !p.Granularity.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownGranularity, p.Granularity)
	}
	return nil
}

// SanitizeParams fills defaults and clamps out-of-range values against the
// roster. Unknown metric and scale modes fall back to diff and party.
func SanitizeParams(p models.ModeParams, d *Dataset) models.ModeParams {
	if !p.Mode.Valid() {
		p.Mode = models.ModeShare
	}
	if !p.Granularity.Valid() {
		p.Granularity = models.GranularityMuni
	}
	if p.SelectedMetric != models.MetricRatio {
		p.SelectedMetric = models.MetricDiff
	}
	if p.RulingMetric != models.MetricRatio {
		p.RulingMetric = models.MetricDiff
	}
	if p.ScaleMode != models.ScaleFixed {
		p.ScaleMode = models.ScaleParty
	}

	if p.Party == "" {
		p.Party = defaultParty(p.Mode, d)
	}
	if p.CompareTarget == "" {
		p.CompareTarget = models.CompareTop
		if p.Mode == models.ModeSelectedDiff && d.HasParty(DiffDefaultTarget) {
			p.CompareTarget = DiffDefaultTarget
		}
	}

	n := len(d.Parties)
	if p.Rank == 0 {
		p.Rank = 1
		if n >= defaultRank {
			p.Rank = defaultRank
		}
	}
	p.Rank = sanitizeRank(p.Rank, n)
	return p
}

func defaultParty(mode models.Mode, d *Dataset) string {
	if mode == models.ModeSelectedDiff && d.HasParty(DiffDefaultBase) {
		return DiffDefaultBase
	}
	if d.HasParty(DefaultPartyCode) {
		return DefaultPartyCode
	}
	if len(d.Parties) > 0 {
		return d.Parties[0].Code
	}
	return ""
}

func sanitizeRank(rank, partyCount int) int {
	max := partyCount
	if max < 1 {
		max = 1
	}
	if rank < 1 {
		return 1
	}
	if rank > max {
		return max
	}
	return rank
}
