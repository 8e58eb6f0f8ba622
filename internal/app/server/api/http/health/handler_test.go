package health

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type fixedCounter int

func (c fixedCounter) Connections() int { return int(c) }

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		counter        Counter
		expectedConns  int
		expectedStatus string
	}{
		{
			name:           "health check returns OK",
			expectedStatus: "OK",
		},
		{
			name:           "reports open connections",
			counter:        fixedCounter(3),
			expectedStatus: "OK",
			expectedConns:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := NewHandler(tt.counter, slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(context.Background(), &Input{})

			// Assert
			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.True(t, output.Body.Success)
			assert.Equal(t, tt.expectedStatus, output.Body.Data.Status)
			assert.Equal(t, tt.expectedConns, output.Body.Data.Connections)
		})
	}
}

func TestHandler_Route(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(fixedCounter(1), slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/health")

	var body struct {
		Success bool   `json:"success"`
		Data    Status `json:"data"`
	}
	assert.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, Status{Status: "OK", Connections: 1}, body.Data)
}
