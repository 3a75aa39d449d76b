package limits

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// membership level governing feature quotas
type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// all tiers in display order
var Tiers = []Tier{TierFree, TierPremium, TierEnterprise}

// reports whether t is one of the known tiers
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPremium, TierEnterprise:
		return true
	}

	return false
}

// opaque identifier of a gated capability
type FeatureKey string

const (
	FeatureImageBackgroundRemove FeatureKey = "image_bg_remove"
	FeatureImageIDPhoto          FeatureKey = "image_id_photo"
	FeatureImageStamp            FeatureKey = "image_stamp"
	FeatureAudioConvert          FeatureKey = "audio_convert"
	FeatureVideoConvert          FeatureKey = "video_convert"
)

// every feature the application gates
var Features = []FeatureKey{
	FeatureImageBackgroundRemove,
	FeatureImageIDPhoto,
	FeatureImageStamp,
	FeatureAudioConvert,
	FeatureVideoConvert,
}

// maximum permitted uses of a feature, or unlimited.
// The zero value is "no entry" and never grants access.
type Quota struct {
	n         int
	set       bool
	unlimited bool
}

// a finite quota of n uses; negative values clamp to zero
func Finite(n int) Quota {
	if n < 0 {
		n = 0
	}

	return Quota{n: n, set: true}
}

// a quota with no upper bound
func Unlimited() Quota {
	return Quota{set: true, unlimited: true}
}

// reports whether the quota has no upper bound
func (q Quota) IsUnlimited() bool {
	return q.unlimited
}

// reports whether the quota is a real table entry
func (q Quota) IsSet() bool {
	return q.set
}

// the finite number of uses; 0 for unlimited or absent quotas
func (q Quota) Limit() int {
	if q.unlimited {
		return 0
	}

	return q.n
}

func (q Quota) String() string {
	switch {
	case !q.set:
		return "none"
	case q.unlimited:
		return unlimitedLiteral
	default:
		return strconv.Itoa(q.n)
	}
}

const unlimitedLiteral = "unlimited"

// encodes finite quotas as numbers and unlimited ones as "unlimited"
func (q Quota) MarshalJSON() ([]byte, error) {
	if q.unlimited {
		return []byte(`"` + unlimitedLiteral + `"`), nil
	}

	return []byte(strconv.Itoa(q.n)), nil
}

// accepts a non-negative integer or the string "unlimited"
func (q *Quota) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if f, ok := raw.(float64); ok {
		if f != float64(int(f)) {
			return fmt.Errorf("quota must be a whole number, got %v", f)
		}

		raw = int(f)
	}

	parsed, err := parseQuota(raw)
	if err != nil {
		return err
	}

	*q = parsed
	return nil
}

// accepts a non-negative integer or the string "unlimited"
func (q *Quota) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parsed, err := parseQuota(raw)
	if err != nil {
		return err
	}

	*q = parsed
	return nil
}

func parseQuota(raw any) (Quota, error) {
	switch v := raw.(type) {
	case int:
		if v < 0 {
			return Quota{}, fmt.Errorf("quota must not be negative, got %d", v)
		}

		return Finite(v), nil
	case string:
		if v == unlimitedLiteral {
			return Unlimited(), nil
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Quota{}, fmt.Errorf("invalid quota %q", v)
		}

		return Finite(n), nil
	default:
		return Quota{}, fmt.Errorf("invalid quota value %v", raw)
	}
}
