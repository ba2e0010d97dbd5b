package enums

import "fmt"

// CoverageStatus classifies a condominium by its coverage percentage.
type CoverageStatus string

const (
	CoverageStatusUncovered CoverageStatus = "UNCOVERED"
	CoverageStatusPartial   CoverageStatus = "PARTIAL"
	CoverageStatusComplete  CoverageStatus = "COMPLETE"
)

var validCoverageStatuses = []CoverageStatus{
	CoverageStatusUncovered,
	CoverageStatusPartial,
	CoverageStatusComplete,
}

// String implements fmt.Stringer.
func (s CoverageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CoverageStatus.
func (s CoverageStatus) IsValid() bool {
	for _, candidate := range validCoverageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CoverageStatusForPercent maps a 0..100 percentage onto its status.
func CoverageStatusForPercent(percent int) CoverageStatus {
	switch {
	case percent <= 0:
		return CoverageStatusUncovered
	case percent >= 100:
		return CoverageStatusComplete
	default:
		return CoverageStatusPartial
	}
}

// ParseCoverageStatus converts raw input into a CoverageStatus. The legacy
// Portuguese labels (descoberto/parcial/completo) are accepted too.
func ParseCoverageStatus(value string) (CoverageStatus, error) {
	switch value {
	case "descoberto":
		return CoverageStatusUncovered, nil
	case "parcial":
		return CoverageStatusPartial, nil
	case "completo":
		return CoverageStatusComplete, nil
	}
	for _, candidate := range validCoverageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coverage status %q", value)
}

// LegacyLabel returns the label used by the legacy JSON document.
func (s CoverageStatus) LegacyLabel() string {
	switch s {
	case CoverageStatusComplete:
		return "completo"
	case CoverageStatusPartial:
		return "parcial"
	default:
		return "descoberto"
	}
}
