package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/territory-cli/internal/model"
)

func TestGeoMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		account string
		rep     string
		want    bool
	}{
		{"identical", "CA", "CA", true},
		{"case insensitive", "CA", "ca", true},
		{"whitespace trimmed", "  CA ", "CA", true},
		{"exact match only, no substrings", "California", "CA", false},
		{"different locations", "CA", "NY", false},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GeoMatch(tt.account, tt.rep))
		})
	}
}

func TestGeoBonus(t *testing.T) {
	t.Parallel()

	account := model.Account{Location: "CA"}

	assert.Equal(t, 0.05, geoBonus(account, model.Rep{Location: "ca"}, 0.05))
	assert.Equal(t, 0.0, geoBonus(account, model.Rep{Location: "NY"}, 0.05))
}

func TestPreserveBonus(t *testing.T) {
	t.Parallel()

	account := model.Account{OriginalRep: "Alice"}

	assert.Equal(t, 0.05, preserveBonus(account, model.Rep{Name: "Alice"}, 0.05))
	// Rep preservation is case-sensitive, unlike geo matching.
	assert.Equal(t, 0.0, preserveBonus(account, model.Rep{Name: "alice"}, 0.05))
	assert.Equal(t, 0.0, preserveBonus(account, model.Rep{Name: "Bob"}, 0.05))
}

func TestApplyBonuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		blended  float64
		geo      float64
		preserve float64
		want     float64
	}{
		{"positive score grows", 0.5, 0.05, 0.05, 0.5 * 1.10},
		{"negative score shrinks toward zero", -0.3, 0.05, 0.05, -0.3 * 0.90},
		{"zero score stays zero", 0, 0.10, 0.10, 0},
		{"no bonuses is identity", 0.42, 0, 0, 0.42},
		{"negative with no bonuses is identity", -0.42, 0, 0, -0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ApplyBonuses(tt.blended, tt.geo, tt.preserve), 1e-12)
		})
	}
}
