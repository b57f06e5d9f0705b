package models

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	apiErr := NewAPIError(ErrorCodeResourceNotFound, "Data not found", map[string]string{"id": "abc"}, http.StatusNotFound)

	assert.Equal(t, "[resource_not_found] Data not found", apiErr.Error())

	raw, err := json.Marshal(apiErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"resource_not_found","message":"Data not found","details":{"id":"abc"}}`, string(raw))

	raw, err = json.Marshal(NewAPIError(ErrorCodeBadRequest, "bad", nil, http.StatusBadRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"bad_request","message":"bad"}`, string(raw))
}
