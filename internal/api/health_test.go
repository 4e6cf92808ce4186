// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/stockroom/internal/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, discardLogger())

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
}

/*
TestReadiness covers healthy, degraded and skipped dependencies.
*/
func TestReadiness(t *testing.T) {
	healthy := func() error { return nil }
	broken := func() error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name       string
		deps       api.HealthDependencies
		wantStatus int
		wantState  string
		wantChecks int
	}{
		{"all_healthy", api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy}, http.StatusOK, "ready", 2},
		{"cache_disabled", api.HealthDependencies{CheckDatabase: healthy}, http.StatusOK, "ready", 1},
		{"database_down", api.HealthDependencies{CheckDatabase: broken, CheckCache: healthy}, http.StatusServiceUnavailable, "degraded", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, readiness := api.NewHealthHandlers(tt.deps, discardLogger())

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body struct {
				Status string `json:"status"`
				Checks []struct {
					Name string `json:"name"`
					OK   bool   `json:"ok"`
				} `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Len(t, body.Checks, tt.wantChecks)
		})
	}
}
