package injuries

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equitrack/backend/internal/models"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from models.InjuryStatus
		to   models.InjuryStatus
		vet  bool
		want bool
	}{
		{"member cannot dismiss", models.InjuryFlagged, models.InjuryDismissed, false, false},
		{"member cannot diagnose", models.InjuryFlagged, models.InjuryDiagnosed, false, false},
		{"vet dismisses", models.InjuryFlagged, models.InjuryDismissed, true, true},
		{"vet diagnoses", models.InjuryFlagged, models.InjuryDiagnosed, true, true},
		{"member re-flags dismissed", models.InjuryDismissed, models.InjuryFlagged, false, true},
		{"vet reopens diagnosed", models.InjuryDiagnosed, models.InjuryFlagged, true, true},
		{"vet moves diagnosed to dismissed", models.InjuryDiagnosed, models.InjuryDismissed, true, true},
		{"same status is not a transition", models.InjuryFlagged, models.InjuryFlagged, true, false},
		{"unknown target rejected", models.InjuryFlagged, models.InjuryStatus("archived"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransitionAllowed(tt.from, tt.to, tt.vet))
		})
	}
}
