package deliveryfee

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tier maps distances up to MaxKm (inclusive) to a flat fee.
type Tier struct {
	MaxKm float64
	Fee   int
}

// TierTable is a step function of distance. Fees are monotonic non-decreasing
// so a longer trip can never cost less.
type TierTable struct {
	tiers     []Tier
	beyondFee int
}

// ParseTierTable parses a comma list of maxKm:fee pairs, e.g. "2:49,5:69,8:99".
// Distances past the last tier pay beyondFee.
func ParseTierTable(raw string, beyondFee int) (*TierTable, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("fee tier table is empty")
	}
	if beyondFee < 0 {
		return nil, fmt.Errorf("beyond-tier fee cannot be negative")
	}

	parts := strings.Split(trimmed, ",")
	tiers := make([]Tier, 0, len(parts))
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid fee tier %q (expected maxKm:fee)", part)
		}
		maxKm, err := strconv.ParseFloat(kv[0], 64)
		if err != nil || maxKm <= 0 {
			return nil, fmt.Errorf("invalid tier distance %q", kv[0])
		}
		fee, err := strconv.Atoi(kv[1])
		if err != nil || fee < 0 {
			return nil, fmt.Errorf("invalid tier fee %q", kv[1])
		}
		tiers = append(tiers, Tier{MaxKm: maxKm, Fee: fee})
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MaxKm < tiers[j].MaxKm })

	for i := 1; i < len(tiers); i++ {
		if tiers[i].MaxKm == tiers[i-1].MaxKm {
			return nil, fmt.Errorf("duplicate tier distance %.1f", tiers[i].MaxKm)
		}
		if tiers[i].Fee < tiers[i-1].Fee {
			return nil, fmt.Errorf("tier fees must be non-decreasing (%.1fkm:%d after %.1fkm:%d)",
				tiers[i].MaxKm, tiers[i].Fee, tiers[i-1].MaxKm, tiers[i-1].Fee)
		}
	}
	if beyondFee < tiers[len(tiers)-1].Fee {
		return nil, fmt.Errorf("beyond-tier fee %d undercuts last tier fee %d", beyondFee, tiers[len(tiers)-1].Fee)
	}

	return &TierTable{tiers: tiers, beyondFee: beyondFee}, nil
}

// FeeFor returns the fee for a trip of the given distance.
func (t *TierTable) FeeFor(distanceKm float64) (int, error) {
	if distanceKm < 0 {
		return 0, fmt.Errorf("distance cannot be negative")
	}
	for _, tier := range t.tiers {
		if distanceKm <= tier.MaxKm {
			return tier.Fee, nil
		}
	}
	return t.beyondFee, nil
}
