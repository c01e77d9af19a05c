// Package balance holds the pure numeric tuning for generated content:
// stat scaling, size tiers, rarity curves, and quest difficulty. Nothing in
// this package draws random numbers; all randomness lives with the seed
// stream consumers.
package balance

import "strings"

// Config exposes the tunable balance constants. These are balance choices,
// not correctness contracts, so they are named and overridable rather than
// buried as magic numbers.
type Config struct {
	// BossMultiplierPct scales boss stats relative to a regular enemy of the
	// same level, in percent (250 = 2.5x).
	BossMultiplierPct int `env:"RH_BOSS_MULTIPLIER_PCT" envDefault:"250"`

	// StatCap clamps any scaled stat so very large repositories stay playable.
	StatCap int `env:"RH_STAT_CAP" envDefault:"500"`

	// MaxEnemiesPerRoom caps the roster drawn for a single room.
	MaxEnemiesPerRoom int `env:"RH_MAX_ENEMIES_PER_ROOM" envDefault:"4"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BossMultiplierPct: 250,
		StatCap:           500,
		MaxEnemiesPerRoom: 4,
	}
}

// Number of size tiers. Tier 0 is a toy repository, TierMax a sprawling
// popular one.
const TierMax = 5

// TierFor buckets a repository into a size tier from its star count and file
// count. Monotonically non-decreasing in both inputs.
func TierFor(stars, fileCount int) int {
	score := 0
	switch {
	case stars > 10000:
		score += 3
	case stars > 1000:
		score += 2
	case stars > 100:
		score += 1
	}
	switch {
	case fileCount > 500:
		score += 2
	case fileCount > 50:
		score += 1
	}
	if score > TierMax {
		score = TierMax
	}
	return score
}

// Scale adjusts a base stat for the repository's size tier and star count.
// It is monotonically non-decreasing in both tier and stars and clamped at
// cfg.StatCap.
func (cfg Config) Scale(base, tier, stars int) int {
	if base < 1 {
		base = 1
	}
	if tier < 0 {
		tier = 0
	}
	// +25% per tier, plus a slow star bonus that saturates via the clamp.
	scaled := base + base*tier/4 + starBonus(stars)
	if scaled > cfg.StatCap {
		return cfg.StatCap
	}
	return scaled
}

// starBonus converts raw stars into a small additive stat bonus.
func starBonus(stars int) int {
	if stars <= 0 {
		return 0
	}
	bonus := 0
	for threshold := 10; threshold <= 100000 && stars >= threshold; threshold *= 10 {
		bonus += 2
	}
	return bonus
}

// BossStat applies the boss multiplier to an already-scaled stat, still
// honoring the stat cap.
func (cfg Config) BossStat(stat int) int {
	boosted := stat * cfg.BossMultiplierPct / 100
	if boosted > cfg.StatCap {
		return cfg.StatCap
	}
	if boosted < stat {
		return stat
	}
	return boosted
}

// Rarity tiers, weakest to strongest.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Rarities lists the tiers in ascending order; loot weight slices are indexed
// to match.
var Rarities = []string{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// RarityWeights returns selection weights for each rarity tier as a function
// of repository stars and the source enemy's health. More stars and tougher
// enemies shift weight toward the rare tail; the distribution always keeps
// every tier reachable from a popular enough repository.
func RarityWeights(stars, enemyHP int) []int {
	// Base curve: heavily common.
	weights := []int{60, 25, 10, 4, 1}

	shift := 0
	switch {
	case stars > 10000:
		shift = 3
	case stars > 1000:
		shift = 2
	case stars > 100:
		shift = 1
	}
	if enemyHP > 150 {
		shift++
	} else if enemyHP > 75 {
		// Half-step: fatten the middle of the curve only.
		weights[2] += 5
	}

	for i := 0; i < shift; i++ {
		// Move a slice of common weight up the ladder.
		weights[0] -= 10
		weights[1] += 3
		weights[2] += 3
		weights[3] += 3
		weights[4]++
	}
	if weights[0] < 10 {
		weights[0] = 10
	}
	return weights
}

// IssueDifficulty scores an issue-derived quest from its discussion volume
// and labels, capped at 20.
func IssueDifficulty(comments int, labels []string) int {
	difficulty := 1 + comments/2
	for _, label := range labels {
		switch strings.ToLower(label) {
		case "bug":
			difficulty += 2
		case "enhancement", "feature":
			difficulty++
		}
	}
	if difficulty > 20 {
		difficulty = 20
	}
	return difficulty
}

// PRBossLevel scores a pull-request boss relative to the repository's base
// level. Bigger diffs and longer discussions raise it; the result is capped
// so a PR boss never completely outclasses the repository itself.
func PRBossLevel(baseLevel, comments, additions, deletions int) int {
	level := baseLevel / 2
	if level < 1 {
		level = 1
	}
	level += comments / 3

	totalChanges := additions + deletions
	switch {
	case totalChanges > 1000:
		level += 10
	case totalChanges > 500:
		level += 5
	case totalChanges > 100:
		level += 2
	}

	maxLevel := baseLevel + 10
	if maxLevel > 50 {
		maxLevel = 50
	}
	if level > maxLevel {
		level = maxLevel
	}
	return level
}
