package persistence

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"flcs-chatbot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeSheetsAPI struct {
	mu        sync.Mutex
	tabs      []string
	gets      int
	addedTabs []string
	appended  [][]interface{}
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/"):
		f.gets++
		sheetList := make([]map[string]interface{}, 0, len(f.tabs))
		for _, tab := range f.tabs {
			sheetList = append(sheetList, map[string]interface{}{"properties": map[string]interface{}{"title": tab}})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-1", "sheets": sheetList})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.addedTabs = append(f.addedTabs, rq.AddSheet.Properties.Title)
				f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr sheets.ValueRange
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestSheetsStore(t *testing.T, api *fakeSheetsAPI) *SheetsStore {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	targets := map[Collection]SheetTarget{
		CollectionQueries: {SpreadsheetID: "sheet-1", Tab: "Queries"},
	}
	return NewSheetsStore(svc, targets, logger.NewNopLogger())
}

func TestSheetsStoreCreatesMissingTabOnce(t *testing.T) {
	api := &fakeSheetsAPI{tabs: []string{"Sheet1"}}
	store := newTestSheetsStore(t, api)
	ctx := context.Background()

	require.NoError(t, store.AppendRecord(ctx, CollectionQueries, []string{"2025-01-01T00:00:00.000000Z", "visa?"}))
	require.NoError(t, store.AppendRecord(ctx, CollectionQueries, []string{"2025-01-01T00:00:01.000000Z", "fees?"}))

	assert.Equal(t, []string{"Queries"}, api.addedTabs)
	assert.Equal(t, 1, api.gets)
	require.Len(t, api.appended, 2)
	assert.Equal(t, []interface{}{"2025-01-01T00:00:00.000000Z", "visa?"}, api.appended[0])
}

func TestSheetsStoreUsesExistingTab(t *testing.T) {
	api := &fakeSheetsAPI{tabs: []string{"Queries"}}
	store := newTestSheetsStore(t, api)

	require.NoError(t, store.AppendRecord(context.Background(), CollectionQueries, []string{"ts", "q"}))

	assert.Empty(t, api.addedTabs)
	assert.Len(t, api.appended, 1)
}
