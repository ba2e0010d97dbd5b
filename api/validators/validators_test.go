package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
)

type samplePayload struct {
	Name       string `json:"name" validate:"required"`
	BlockCount int    `json:"block_count" validate:"min=1"`
	Priority   string `json:"priority" validate:"omitempty,oneof=alta media baixa"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jardim","block_count":4}`))
	var payload samplePayload
	require.NoError(t, DecodeJSONBody(req, &payload))
	assert.Equal(t, "Jardim", payload.Name)
	assert.Equal(t, 4, payload.BlockCount)
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"block_count":0,"priority":"urgente"}`))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be at least 1", details["block_count"])
	assert.Equal(t, "must be one of: alta media baixa", details["priority"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"A","block_count":1,"coverage_percent":90}`))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsTrailingAndOversizedBodies(t *testing.T) {
	bodies := map[string]string{
		"trailing object": `{"name":"A","block_count":1}{"name":"B","block_count":2}`,
		"trailing junk":   `{"name":"A","block_count":1} x`,
		"oversized":       `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `","block_count":1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var payload samplePayload
			err := DecodeJSONBody(req, &payload)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"name\":\"A\",\"block_count\":1}\n\n"))
	var payload samplePayload
	require.NoError(t, DecodeJSONBody(req, &payload))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestParseIDParam(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	id, err := ParseIDParam(req, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", raw)
		_, err := ParseIDParam(req, "id")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("start_date", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-10", got.Format(DateLayout))

	got, err = ParseDate("start_date", " ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDate("start_date", "10/03/2025")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
