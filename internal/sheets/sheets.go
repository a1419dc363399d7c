// Package sheets mirrors activity rows into a Google Sheets range through
// the Sheets REST API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/abhisek/seatutor/internal/store"
)

const (
	DefaultBaseURL = "https://sheets.googleapis.com"
	DefaultRange   = "Activity!A:G"
	DefaultTimeout = 10 * time.Second

	timestampLayout = "2006-01-02 15:04:05"
)

// Header is the column order of a mirrored activity row.
var Header = []string{
	"Timestamp", "Student_ID", "Student_Name", "Question_Type", "Strand", "Correct", "Time_Seconds",
}

// Config identifies the target sheet.
type Config struct {
	SpreadsheetID string
	Range         string
	AccessToken   string
	BaseURL       string
	Timeout       time.Duration
}

// Client appends rows to one spreadsheet range. It satisfies the
// session's activity sink.
type Client struct {
	httpClient    *resty.Client
	spreadsheetID string
	valueRange    string
}

// APIError is a non-2xx answer from the Sheets API.
type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sheets api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("sheets api: HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

type appendResponse struct {
	SpreadsheetID string `json:"spreadsheetId"`
	TableRange    string `json:"tableRange"`
	Updates       struct {
		UpdatedRange string `json:"updatedRange"`
		UpdatedRows  int    `json:"updatedRows"`
	} `json:"updates"`
}

// NewClient builds a Client. SpreadsheetID and AccessToken are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("sheets: access token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetAuthToken(cfg.AccessToken)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(cfg.Timeout)

	return &Client{
		httpClient:    client,
		spreadsheetID: cfg.SpreadsheetID,
		valueRange:    cfg.Range,
	}, nil
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// AppendActivity appends one row per entry below the range's last row.
func (c *Client) AppendActivity(ctx context.Context, entries ...store.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = Row(e)
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"spreadsheetId": c.spreadsheetID,
			"range":         c.valueRange,
		}).
		SetQueryParams(map[string]string{
			"valueInputOption": "RAW",
			"insertDataOption": "INSERT_ROWS",
		}).
		SetBody(valueRange{Range: c.valueRange, MajorDimension: "ROWS", Values: rows}).
		SetResult(&appendResponse{}).
		SetError(&errorEnvelope{}).
		Post("/v4/spreadsheets/{spreadsheetId}/values/{range}:append")
	if err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	if response.IsError() {
		apiErr := &APIError{StatusCode: response.StatusCode()}
		if env, ok := response.Error().(*errorEnvelope); ok {
			apiErr.Status = env.Error.Status
			apiErr.Message = env.Error.Message
		}
		return fmt.Errorf("append rows: %w", apiErr)
	}
	return nil
}

// Row renders an entry in the mirrored column order. Timestamps keep the
// entry's own zone; Correct is "Yes" or "No".
func Row(e store.ActivityEntry) []any {
	correct := "No"
	if e.Correct {
		correct = "Yes"
	}
	return []any{
		e.Timestamp.Format(timestampLayout),
		e.StudentID,
		e.StudentName,
		e.QuestionType,
		e.Strand,
		correct,
		int(math.Round(e.ElapsedSeconds)),
	}
}
