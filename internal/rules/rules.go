// Package rules holds the game rule set the selectors run under. The values
// mirror the current FPL classic rules but are plain configuration so
// alternate leagues or seasons only need a different rule set, not new code.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"fpl-optimizer/internal/feed"
)

// Chip is a one-time rule modifier for a single gameweek.
type Chip string

const (
	ChipNone          Chip = ""
	ChipWildcard      Chip = "wildcard"
	ChipFreeHit       Chip = "free_hit"
	ChipBenchBoost    Chip = "bench_boost"
	ChipTripleCaptain Chip = "triple_captain"
)

// ParseChip validates a chip name from the CLI or an MCP tool call.
func ParseChip(s string) (Chip, error) {
	c := Chip(strings.TrimSpace(strings.ToLower(s)))
	switch c {
	case ChipNone, ChipWildcard, ChipFreeHit, ChipBenchBoost, ChipTripleCaptain:
		return c, nil
	default:
		return ChipNone, fmt.Errorf("unknown chip: %q", s)
	}
}

// UnlimitedTransfers reports whether the chip lifts the transfer limit and
// the sell-to-buy budget rule, forcing a full squad rebuild.
func (c Chip) UnlimitedTransfers() bool {
	return c == ChipWildcard || c == ChipFreeHit
}

// Title renders the chip for reports ("bench_boost" -> "Bench Boost").
func (c Chip) Title() string {
	if c == ChipNone {
		return ""
	}
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Formation is a (defenders, midfielders, forwards) triple for the ten
// outfield lineup slots. The goalkeeper slot is always exactly one.
type Formation struct {
	Defenders   int
	Midfielders int
	Forwards    int
}

// Label renders the conventional "D-M-F" form.
func (f Formation) Label() string {
	return fmt.Sprintf("%d-%d-%d", f.Defenders, f.Midfielders, f.Forwards)
}

// Count returns the outfield slots for a position, or zero for goalkeepers.
func (f Formation) Count(pos feed.Position) int {
	switch pos {
	case feed.Defender:
		return f.Defenders
	case feed.Midfielder:
		return f.Midfielders
	case feed.Forward:
		return f.Forwards
	default:
		return 0
	}
}

// ParseFormation reads the "D-M-F" form back from configuration.
func ParseFormation(s string) (Formation, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Formation{}, fmt.Errorf("invalid formation: %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Formation{}, fmt.Errorf("invalid formation: %q", s)
		}
		nums[i] = n
	}
	f := Formation{Defenders: nums[0], Midfielders: nums[1], Forwards: nums[2]}
	if f.Defenders+f.Midfielders+f.Forwards != 10 {
		return Formation{}, fmt.Errorf("formation %s does not fill 10 outfield slots", f.Label())
	}
	return f, nil
}

// MarshalYAML stores formations in their "D-M-F" form.
func (f Formation) MarshalYAML() (any, error) {
	return f.Label(), nil
}

// UnmarshalYAML accepts the "D-M-F" form.
func (f *Formation) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseFormation(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Rules is the full rule set for one squad/lineup optimization run.
type Rules struct {
	BudgetCap        float64               `yaml:"budget_cap"`
	SquadSize        int                   `yaml:"squad_size"`
	ClubCap          int                   `yaml:"club_cap"`
	TransferPenalty  float64               `yaml:"transfer_penalty"`
	MaxFreeTransfers int                   `yaml:"max_free_transfers"`
	Quotas           map[feed.Position]int `yaml:"-"`
	Formations       []Formation           `yaml:"formations"`
}

// Default returns the 2024+ classic FPL rule set: 100.0 budget, 15-player
// squad of 2 GK / 5 DEF / 5 MID / 3 FWD, at most 3 per club, 4-point cost per
// transfer beyond the free allowance, and the seven legal formations.
func Default() Rules {
	return Rules{
		BudgetCap:        100.0,
		SquadSize:        15,
		ClubCap:          3,
		TransferPenalty:  4.0,
		MaxFreeTransfers: 5,
		Quotas: map[feed.Position]int{
			feed.Goalkeeper: 2,
			feed.Defender:   5,
			feed.Midfielder: 5,
			feed.Forward:    3,
		},
		Formations: []Formation{
			{3, 5, 2},
			{3, 4, 3},
			{4, 4, 2},
			{4, 3, 3},
			{4, 5, 1},
			{5, 4, 1},
			{5, 3, 2},
		},
	}
}

// Validate rejects rule sets the selectors cannot run under.
func (r Rules) Validate() error {
	if r.BudgetCap <= 0 {
		return fmt.Errorf("budget cap must be positive, got %.1f", r.BudgetCap)
	}
	total := 0
	for _, n := range r.Quotas {
		total += n
	}
	if total != r.SquadSize {
		return fmt.Errorf("position quotas sum to %d, want squad size %d", total, r.SquadSize)
	}
	if r.ClubCap < 1 {
		return fmt.Errorf("club cap must be at least 1, got %d", r.ClubCap)
	}
	if len(r.Formations) == 0 {
		return fmt.Errorf("at least one formation is required")
	}
	for _, f := range r.Formations {
		if f.Defenders+f.Midfielders+f.Forwards != 10 {
			return fmt.Errorf("formation %s does not fill 10 outfield slots", f.Label())
		}
		for _, pos := range []feed.Position{feed.Defender, feed.Midfielder, feed.Forward} {
			if f.Count(pos) > r.Quotas[pos] {
				return fmt.Errorf("formation %s needs more %s players than the squad quota %d",
					f.Label(), pos.Label(), r.Quotas[pos])
			}
		}
	}
	return nil
}
