package persistence

import (
	"context"
	"fmt"
	"os"
	"sync"

	"flcs-chatbot-be/internal/pkg/logger"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetTarget is the spreadsheet and tab a collection is appended to.
type SheetTarget struct {
	SpreadsheetID string
	Tab           string
}

// SheetsStore appends rows to Google Sheets tabs, creating a tab on first use
// when it does not exist yet.
type SheetsStore struct {
	service *sheets.Service
	targets map[Collection]SheetTarget
	logger  logger.ILogger

	mu        sync.Mutex
	knownTabs map[string]bool
}

// NewSheetsService authorizes a Sheets client from a service-account JSON file.
func NewSheetsService(ctx context.Context, credentialsPath string) (*sheets.Service, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read service account %s: %w", credentialsPath, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func NewSheetsStore(service *sheets.Service, targets map[Collection]SheetTarget, log logger.ILogger) *SheetsStore {
	return &SheetsStore{
		service:   service,
		targets:   targets,
		logger:    log,
		knownTabs: make(map[string]bool),
	}
}

func (s *SheetsStore) AppendRecord(ctx context.Context, collection Collection, values []string) error {
	target, ok := s.targets[collection]
	if !ok || target.SpreadsheetID == "" {
		return fmt.Errorf("sheet ID not configured for %s: %w", collection, ErrNotConfigured)
	}

	if err := s.ensureTab(ctx, target); err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := s.service.Spreadsheets.Values.
		Append(target.SpreadsheetID, target.Tab+"!A1", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s/%s: %w", target.SpreadsheetID, target.Tab, err)
	}

	s.logger.Debug("PERSISTENCE", "Row appended", map[string]interface{}{
		"collection": collection,
		"tab":        target.Tab,
	})
	return nil
}

func (s *SheetsStore) ensureTab(ctx context.Context, target SheetTarget) error {
	key := target.SpreadsheetID + "/" + target.Tab

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.knownTabs[key] {
		return nil
	}

	spreadsheet, err := s.service.Spreadsheets.Get(target.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("open spreadsheet %s: %w", target.SpreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == target.Tab {
			s.knownTabs[key] = true
			return nil
		}
	}

	s.logger.Info("PERSISTENCE", "Tab not found, creating it", map[string]interface{}{
		"spreadsheet": target.SpreadsheetID,
		"tab":         target.Tab,
	})

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: target.Tab,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: 10,
					},
				},
			},
		}},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(target.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create tab %s: %w", target.Tab, err)
	}

	s.knownTabs[key] = true
	return nil
}
