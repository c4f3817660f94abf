package allocation

import (
	"strings"

	"github.com/sells-group/territory-cli/internal/model"
)

// GeoMatch reports whether two locations match. The comparison is
// whitespace-trimmed, case-insensitive, EXACT string equality — "CA" does
// not match "California". Feeding inconsistently formatted locations is the
// most common integration mistake; the validator warns about it upstream.
func GeoMatch(accountLocation, repLocation string) bool {
	return strings.EqualFold(strings.TrimSpace(accountLocation), strings.TrimSpace(repLocation))
}

// geoBonus returns bonusValue if the account and rep locations geo-match,
// else 0.
func geoBonus(account model.Account, rep model.Rep, bonusValue float64) float64 {
	if GeoMatch(account.Location, rep.Location) {
		return bonusValue
	}
	return 0
}

// preserveBonus returns bonusValue if the account's original rep is this rep
// (exact, case-sensitive name match), else 0.
func preserveBonus(account model.Account, rep model.Rep, bonusValue float64) float64 {
	if account.OriginalRep == rep.Name {
		return bonusValue
	}
	return 0
}

// ApplyBonuses applies preference bonuses to a blended need score with a
// sign-aware multiplier. A rep under target (score >= 0) gets
// score*(1+geo+preserve); a rep over target (score < 0) gets
// score*(1-geo-preserve), shrinking the penalty. Either way the rep's
// relative priority goes up; a flat additive bonus would not move a deeply
// negative score toward the top.
func ApplyBonuses(blendedScore, geoBonus, preserveBonus float64) float64 {
	if blendedScore >= 0 {
		return blendedScore * (1 + geoBonus + preserveBonus)
	}
	return blendedScore * (1 - geoBonus - preserveBonus)
}
