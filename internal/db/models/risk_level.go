package models

import "fmt"

// RiskLevel is the ordinal severity of a review verdict. It doubles as the
// notification threshold comparand: a recipient subscribed at level T is
// notified for any verdict with level >= T.
type RiskLevel int

// Risk level constants, ordered from least to most severe
const (
	// RiskLevelEvent is a low-severity informational finding
	RiskLevelEvent RiskLevel = iota
	// RiskLevelBug is a medium-severity defect
	RiskLevelBug
	// RiskLevelInsecure is a high-severity security weakness
	RiskLevelInsecure
	// RiskLevelLeak is a critical finding such as a leaked credential
	RiskLevelLeak
)

var riskLevelNames = []string{
	"event",
	"bug",
	"insecure",
	"leak",
}

// RiskLevelFromInt maps an integer from a verdict payload to a RiskLevel
func RiskLevelFromInt(v int) (RiskLevel, error) {
	if v < 0 || v >= len(riskLevelNames) {
		return RiskLevelEvent, fmt.Errorf("invalid risk level: %d", v)
	}
	return RiskLevel(v), nil
}

func (l RiskLevel) String() string {
	if l < 0 || int(l) >= len(riskLevelNames) {
		return "unknown"
	}
	return riskLevelNames[l]
}

// Meets reports whether a verdict at this level satisfies the given
// notification threshold.
func (l RiskLevel) Meets(threshold RiskLevel) bool {
	return l >= threshold
}
