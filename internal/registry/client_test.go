package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.RegistryConfig{
		BaseURL:        srv.URL,
		Username:       "registry-user",
		Password:       "registry-pass",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestListPatientsSendsCredentialsAndQuery(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"success":true,"data":{"current_page":1,"last_page":1,"per_page":10,"total":0,"data":[]}}`))
	})

	_, err := client.ListPatients(context.Background(), ListParams{
		Page:    "2",
		PerPage: "25",
		Search:  "sari",
		Gender:  "female",
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/patient", got.URL.Path)
	assert.Equal(t, "registry-user", got.Header.Get("X-username"))
	assert.Equal(t, "registry-pass", got.Header.Get("X-password"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	query := got.URL.Query()
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "25", query.Get("per_page"))
	assert.Equal(t, "sari", query.Get("search"))
	assert.Equal(t, "female", query.Get("gender"))
	// Unset filters never reach the upstream.
	assert.False(t, query.Has("blood_type"))
}

func TestListPatientsReshapesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": {
				"current_page": 2,
				"last_page": 5,
				"per_page": 10,
				"total": 42,
				"from": 11,
				"to": 20,
				"data": [{"id": 1, "name": "Sari"}, {"id": 2, "name": "Budi"}]
			}
		}`))
	})

	page, err := client.ListPatients(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Patients, 2)
	assert.JSONEq(t, `{"id": 1, "name": "Sari"}`, string(page.Patients[0]))

	require.NotNil(t, page.Pagination)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 5, page.Pagination.LastPage)
	assert.Equal(t, 42, page.Pagination.Total)
}

func TestListPatientsUnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"nope"}`))
	})

	page, err := client.ListPatients(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Patients)
	assert.Nil(t, page.Pagination)
}

func TestListPatientsUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.ListPatients(context.Background(), ListParams{})
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestCreatePatientSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "registry-user", r.Header.Get("X-username"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":7}}`))
	})

	body, err := client.CreatePatient(context.Background(), json.RawMessage(`{"name":"Sari"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":7}}`, string(body))
}

func TestCreatePatientValidationPassthrough(t *testing.T) {
	upstream := `{"success":false,"errors":{"nik":["The nik field is required."]}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(upstream))
	})

	_, err := client.CreatePatient(context.Background(), json.RawMessage(`{}`))

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.JSONEq(t, upstream, string(validation.Body))
}

func TestCreatePatientUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreatePatient(context.Background(), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUpstream)
}
