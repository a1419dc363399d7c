package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/seatutor/internal/store"
)

var ast = time.FixedZone("AST", -4*3600)

func entry(correct bool, secs float64) store.ActivityEntry {
	return store.ActivityEntry{
		Timestamp:      time.Date(2026, 3, 10, 9, 15, 30, 0, ast),
		StudentID:      "STU-1A2B3C4D",
		StudentName:    "Asha Ramdass",
		QuestionType:   "Practice",
		Strand:         "Number",
		Correct:        correct,
		ElapsedSeconds: secs,
	}
}

func TestRow(t *testing.T) {
	got := Row(entry(true, 41.6))
	assert.Equal(t, []any{
		"2026-03-10 09:15:30", "STU-1A2B3C4D", "Asha Ramdass", "Practice", "Number", "Yes", 42,
	}, got)
	assert.Len(t, got, len(Header))

	assert.Equal(t, "No", Row(entry(false, 0))[5])
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{AccessToken: "t"})
	assert.ErrorContains(t, err, "spreadsheet id")

	_, err = NewClient(Config{SpreadsheetID: "s"})
	assert.ErrorContains(t, err, "access token")
}

func TestClient_AppendActivity(t *testing.T) {
	tests := []struct {
		name              string
		entries           []store.ActivityEntry
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantCalls         int
		wantErrorContains string
	}{
		{
			name:    "appends every entry as a row",
			entries: []store.ActivityEntry{entry(true, 12), entry(false, 30)},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Activity!A:G:append", r.URL.Path)
				assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
				assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
				assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

				var body valueRange
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "ROWS", body.MajorDimension)
				require.Len(t, body.Values, 2)
				assert.Equal(t, "Yes", body.Values[0][5])
				assert.Equal(t, "No", body.Values[1][5])
				assert.EqualValues(t, 30, body.Values[1][6])

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"spreadsheetId": "sheet-123",
					"updates":       map[string]any{"updatedRows": 2},
				})
			},
			wantCalls: 1,
		},
		{
			name:      "no entries makes no request",
			wantCalls: 0,
		},
		{
			name:    "api error is decoded",
			entries: []store.ActivityEntry{entry(true, 1)},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
			},
			wantCalls:         1,
			wantErrorContains: "HTTP 403 PERMISSION_DENIED: The caller does not have permission",
		},
		{
			name:    "server error without body",
			entries: []store.ActivityEntry{entry(true, 1)},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantCalls:         1,
			wantErrorContains: "HTTP 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client, err := NewClient(Config{
				SpreadsheetID: "sheet-123",
				AccessToken:   "secret-token",
				BaseURL:       server.URL,
			})
			require.NoError(t, err)
			defer client.Close()

			err = client.AppendActivity(context.Background(), tt.entries...)
			if tt.wantErrorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorContains)
				var apiErr *APIError
				assert.ErrorAs(t, err, &apiErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
