package poses

import "strings"

// AISupported poses have a trained classifier head and get real-time
// feedback. "Traingle" matches the label the model was trained with;
// renaming it breaks the class-index table below.
var AISupported = []string{
	"Tree", "Chair", "Cobra", "Warrior", "Dog", "Shoulderstand", "Traingle",
}

// Manual poses are timer-based only.
var Manual = []string{
	"Mountain", "Child", "Bridge", "Plank", "Cat-Cow", "Downward Dog",
}

func All() []string {
	out := make([]string, 0, len(AISupported)+len(Manual))
	out = append(out, AISupported...)
	out = append(out, Manual...)
	return out
}

// ClassIndex maps a pose name to the classifier's output index. Manual
// poses are mapped onto the nearest trained class until the model is
// retrained with dedicated heads.
var ClassIndex = map[string]int{
	"Chair":         0,
	"Cobra":         1,
	"Dog":           2,
	"No_Pose":       3,
	"Shoulderstand": 4,
	"Traingle":      5,
	"Tree":          6,
	"Warrior":       7,
	"Mountain":      6,
	"Child":         1,
	"Bridge":        4,
	"Plank":         2,
	"Cat-Cow":       2,
	"Downward Dog":  2,
}

func IsAISupported(name string) bool {
	for _, p := range AISupported {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

func IsSupported(name string) bool {
	for _, p := range All() {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// MatchSupported resolves a free-text pose name (e.g. from a generated
// plan) to a catalog pose using case-insensitive substring matching in
// both directions. Returns the canonical name and whether a match exists.
func MatchSupported(name string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return "", false
	}
	for _, p := range All() {
		pl := strings.ToLower(p)
		if strings.Contains(lowered, pl) || strings.Contains(pl, lowered) {
			return p, true
		}
	}
	return "", false
}

// Accuracy tiers for a single classification tick. Thresholds are in
// percent of the target-class probability.
type Tier string

const (
	TierPerfect Tier = "perfect"
	TierCorrect Tier = "correct"
	TierNear    Tier = "near"
	TierOff     Tier = "off"
)

// TierFor returns the feedback tier and the skeleton color the UI should
// draw. A detection counts as correct form at the "correct" tier and above.
func TierFor(accuracyPercent int) (Tier, string) {
	switch {
	case accuracyPercent > 97:
		return TierPerfect, "rgb(0,255,0)"
	case accuracyPercent > 80:
		return TierCorrect, "rgb(255,255,0)"
	case accuracyPercent > 60:
		return TierNear, "rgb(255,165,0)"
	default:
		return TierOff, "rgb(255,0,0)"
	}
}

func (t Tier) Correct() bool {
	return t == TierPerfect || t == TierCorrect
}
