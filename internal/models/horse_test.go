package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorseHealthRecordsPassThrough(t *testing.T) {
	// Client-chosen key order and spacing must survive the round trip
	// through the model untouched.
	doc := `{"owner":"J. Mellor","vaccinations":[{"name":"tetanus","date":"2025-11-02"}],"zzz_first":true}`
	h := Horse{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Name:           "Northern Star",
		Status:         HorseActive,
		HealthRecords:  json.RawMessage(doc),
	}

	out, err := json.Marshal(h)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, doc, string(decoded["health_records"]))
}

func TestHorseOmitsEmptyHealthRecords(t *testing.T) {
	out, err := json.Marshal(Horse{Name: "Luna", Status: HorseActive})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "health_records")
}

func TestHorsePhotoKeyNotSerialized(t *testing.T) {
	out, err := json.Marshal(Horse{Name: "Luna", PhotoKey: "horses/abc/photo.jpg"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "photo.jpg")
}

func TestValidHorseStatus(t *testing.T) {
	for _, s := range []string{"active", "injured", "retired", "inactive"} {
		assert.True(t, ValidHorseStatus(s), s)
	}
	assert.False(t, ValidHorseStatus("sold"))
	assert.False(t, ValidHorseStatus(""))
}

func TestValidInjuryRisk(t *testing.T) {
	for _, s := range []string{"low", "medium", "high", "critical"} {
		assert.True(t, ValidInjuryRisk(s), s)
	}
	assert.False(t, ValidInjuryRisk("extreme"))
}
