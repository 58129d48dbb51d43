package horses

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBodyCannotPairDevice(t *testing.T) {
	orgID := uuid.New()
	body := []byte(`{
		"organization_id": "` + orgID.String() + `",
		"name": "Northern Star",
		"device_id": "` + uuid.NewString() + `"
	}`)
	var req CreateRequest
	require.NoError(t, json.Unmarshal(body, &req))

	horse, err := newHorse(req, orgID)
	require.NoError(t, err)
	assert.Nil(t, horse.DeviceID, "pairing goes through the devices link endpoint only")
	assert.Equal(t, orgID, horse.OrganizationID)
	assert.Equal(t, "Northern Star", horse.Name)
}

func TestUpdateBodyCannotPairDevice(t *testing.T) {
	name := "Renamed"
	body := []byte(`{"name": "Renamed", "device_id": "` + uuid.NewString() + `", "clear_device": true}`)
	var req UpdateRequest
	require.NoError(t, json.Unmarshal(body, &req))

	p, err := req.params()
	require.NoError(t, err)
	assert.Equal(t, UpdateParams{Name: &name}, p)
}

func TestNewHorseDateOfBirth(t *testing.T) {
	orgID := uuid.New()
	dob := "2021-04-30"
	horse, err := newHorse(CreateRequest{OrganizationID: orgID.String(), Name: "Filly", DateOfBirth: &dob}, orgID)
	require.NoError(t, err)
	require.NotNil(t, horse.DateOfBirth)
	assert.Equal(t, "2021-04-30", horse.DateOfBirth.Format("2006-01-02"))

	bad := "30/04/2021"
	_, err = newHorse(CreateRequest{OrganizationID: orgID.String(), Name: "Filly", DateOfBirth: &bad}, orgID)
	assert.Error(t, err)
}
