package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The client sends progressPercentage and userId; the field names are part of
// the wire contract and must not drift.
func TestProgressPayloadFieldName(t *testing.T) {
	var req UpdateProgressRequest
	require.NoError(t, json.Unmarshal([]byte(`{"progressPercentage":40}`), &req))
	require.NotNil(t, req.ProgressPercentage)
	assert.Equal(t, 40, *req.ProgressPercentage)
}

func TestParticipationPayloadFieldName(t *testing.T) {
	var req ParticipationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"action":"invite","role":"RA","userId":42}`), &req))
	assert.Equal(t, int64(42), req.TargetUserID)
}
