// Package sheets is the spreadsheet persistence collaborator: one row
// appended per completed assessment. Failures here are reported as
// warnings and never block the reporting flow.
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/services"
)

// Responses sheet, columns A..AH: timestamp + 4 profile fields + 27 items
// + total + category = 34 columns.
const (
	appendRange = "Responses!A:AH"
	headerRange = "Responses!A1:AH1"
)

// Conservative defaults, well below the Sheets per-user quota.
const (
	requestsPerSecond = 1.0
	burstSize         = 2
)

type Appender struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
}

// NewAppender builds a Sheets client from service-account credentials
// JSON.
func NewAppender(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Appender, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id required")
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &Appender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}, nil
}

// HeaderRow is the fixed column header, shared with the admin CSV export.
func HeaderRow() []interface{} {
	header := services.RecordCSVHeader()
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	return row
}

// RecordRow flattens a record into the fixed column order:
// [timestamp, alias, age, gender, occupation, item_1..item_27, total_score, category].
func RecordRow(rec *models.AssessmentRecord) []interface{} {
	row := []interface{}{
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		rec.Profile.Alias,
		rec.Profile.Age,
		rec.Profile.Gender,
		rec.Profile.Occupation,
	}
	for id := 1; id <= services.ItemCount; id++ {
		row = append(row, rec.Responses[id])
	}
	return append(row, rec.TotalScore, rec.Severity.Label)
}

// EnsureHeader writes the header row. Safe to call on an already
// initialized sheet.
func (a *Appender) EnsureHeader(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	body := &gsheets.ValueRange{Values: [][]interface{}{HeaderRow()}}
	_, err := a.svc.Spreadsheets.Values.Update(a.spreadsheetID, headerRange, body).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	return nil
}

// Append adds one record row. The caller's context bounds the call.
func (a *Appender) Append(ctx context.Context, rec *models.AssessmentRecord) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	body := &gsheets.ValueRange{Values: [][]interface{}{RecordRow(rec)}}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, appendRange, body).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}
