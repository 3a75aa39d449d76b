package limits

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// static (feature, tier) -> quota mapping. Read-only once built.
type Table struct {
	entries map[FeatureKey]map[Tier]Quota
}

// the reference limits: one trial use on free, unlimited on paid tiers
func Default() *Table {
	t := NewTable()

	for _, feature := range Features {
		t.Set(feature, TierFree, Finite(1))
		t.Set(feature, TierPremium, Unlimited())
		t.Set(feature, TierEnterprise, Unlimited())
	}

	return t
}

// creates an empty table; every lookup denies until entries are set
func NewTable() *Table {
	return &Table{entries: make(map[FeatureKey]map[Tier]Quota)}
}

// sets the quota for a (feature, tier) pair. Only used while building a table.
func (t *Table) Set(feature FeatureKey, tier Tier, q Quota) *Table {
	byTier, ok := t.entries[feature]
	if !ok {
		byTier = make(map[Tier]Quota, len(Tiers))
		t.entries[feature] = byTier
	}

	byTier[tier] = q
	return t
}

// returns the quota for a (feature, tier) pair and whether an entry exists
func (t *Table) Lookup(feature FeatureKey, tier Tier) (Quota, bool) {
	if t == nil {
		return Quota{}, false
	}

	q, ok := t.entries[feature][tier]
	if !ok || !q.IsSet() {
		return Quota{}, false
	}

	return q, true
}

// returns the registered features in sorted order
func (t *Table) Features() []FeatureKey {
	keys := make([]FeatureKey, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// reports whether the feature is in the registry
func (t *Table) Has(feature FeatureKey) bool {
	_, ok := t.entries[feature]
	return ok
}

// checks the table against the features callers use: each used feature must be
// registered and every registered feature needs an entry for every tier
func (t *Table) Validate(used ...FeatureKey) error {
	var problems []string

	for _, feature := range used {
		if !t.Has(feature) {
			problems = append(problems, fmt.Sprintf("feature %q is not registered", feature))
		}
	}

	for _, feature := range t.Features() {
		for _, tier := range Tiers {
			if _, ok := t.Lookup(feature, tier); !ok {
				problems = append(problems, fmt.Sprintf("feature %q has no %s quota", feature, tier))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid limit table: %s", strings.Join(problems, "; "))
	}

	return nil
}

type fileFormat struct {
	Features map[string]map[string]Quota `yaml:"features"`
}

// reads a YAML limit file and overlays it on base. Unknown tiers are rejected.
func LoadFile(path string, base *Table) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits file: %w", err)
	}

	return Parse(data, base)
}

// parses YAML limits and overlays them on a copy of base
func Parse(data []byte, base *Table) (*Table, error) {
	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse limits file: %w", err)
	}

	out := base.clone()

	for feature, byTier := range parsed.Features {
		for tierName, q := range byTier {
			tier := Tier(tierName)
			if !tier.Valid() {
				return nil, fmt.Errorf("feature %q: unknown tier %q", feature, tierName)
			}

			out.Set(FeatureKey(feature), tier, q)
		}
	}

	return out, nil
}

func (t *Table) clone() *Table {
	out := NewTable()
	if t == nil {
		return out
	}

	for feature, byTier := range t.entries {
		for tier, q := range byTier {
			out.Set(feature, tier, q)
		}
	}

	return out
}

// file-size ceilings in megabytes; always finite
var fileSizeLimitsMB = map[Tier]int64{
	TierFree:       10,
	TierPremium:    100,
	TierEnterprise: 500,
}

// returns the upload ceiling for a tier in MB; unknown tiers get the free ceiling
func FileSizeLimitMB(tier Tier) int64 {
	if mb, ok := fileSizeLimitsMB[tier]; ok {
		return mb
	}

	return fileSizeLimitsMB[TierFree]
}

// returns the upload ceiling for a tier in bytes
func FileSizeLimitBytes(tier Tier) int64 {
	return FileSizeLimitMB(tier) * 1024 * 1024
}

var displayNames = map[Tier]string{
	TierFree:       "Free",
	TierPremium:    "Premium",
	TierEnterprise: "Enterprise",
}

var benefits = map[Tier][]string{
	TierFree: {
		"1 trial use of every feature",
		"Files up to 10MB",
		"Standard processing speed",
	},
	TierPremium: {
		"Unlimited use of every feature",
		"Files up to 100MB",
		"Fast processing",
		"Priority support",
	},
	TierEnterprise: {
		"Everything in Premium",
		"Files up to 500MB",
		"Fastest processing",
		"API access",
		"Batch processing",
		"Dedicated support",
	},
}

var prices = map[Tier]string{
	TierFree:       "$0",
	TierPremium:    "$9.90/mo",
	TierEnterprise: "$49.90/mo",
}

// returns the human-readable tier name
func DisplayName(tier Tier) string {
	if name, ok := displayNames[tier]; ok {
		return name
	}

	return string(tier)
}

// returns the marketing benefit list for a tier
func Benefits(tier Tier) []string {
	return slices.Clone(benefits[tier])
}

// returns the price label for a tier
func Price(tier Tier) string {
	return prices[tier]
}
