package injuries

import "github.com/equitrack/backend/internal/models"

// TransitionAllowed reports whether a caller may move an injury record
// from one status to another. Any organization member can re-flag a
// dismissed record; resolving a flag (dismissing or diagnosing) is a
// clinical judgment reserved for veterinarians and admins.
func TransitionAllowed(from, to models.InjuryStatus, veterinarian bool) bool {
	if from == to {
		return false
	}
	switch to {
	case models.InjuryFlagged:
		return true
	case models.InjuryDismissed, models.InjuryDiagnosed:
		return veterinarian
	}
	return false
}
