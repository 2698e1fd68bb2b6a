package statusserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusEndpointReturnsLatestSnapshot(t *testing.T) {
	s := New()
	s.Publish(Snapshot{Runner: "demo", Stage: "build", Jobs: []JobStatus{{Name: "compile", Finished: true, Successful: true}}})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "demo", got.Runner)
	require.Len(t, got.Jobs, 1)
	require.True(t, got.Jobs[0].Successful)
}
