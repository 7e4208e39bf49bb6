// Package sheets persists ledger snapshots in a Google Sheets tab. Only the
// persistence differs from the other backends; accounting logic never
// special-cases the spreadsheet deployment.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"caixa/internal/core"
	"caixa/internal/storage"
)

// Rows: id | kind | amount_cents | category | recorded_at (RFC 3339).
// Row 1 is a header; data starts at row 2.
const dataRange = "A2:E"

type Config struct {
	SpreadsheetID string
	SheetName     string
	// Service account credentials: inline JSON wins over a file path;
	// GOOGLE_APPLICATION_CREDENTIALS is the final fallback.
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Lancamentos"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credsJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	credsFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if credsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case credsJSON != "":
		credentials = []byte(credsJSON)
	case credsFile != "":
		data, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	rng := fmt.Sprintf("%s!%s", c.sheetName, dataRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return storage.Snapshot{}, false, nil
	}

	entries := make([]core.Entry, 0, len(resp.Values))
	for i, row := range resp.Values {
		e, err := parseRow(row)
		if err != nil {
			return storage.Snapshot{}, false,
				fmt.Errorf("%w: sheet %s row %d: %v", storage.ErrCorruptSnapshot, c.sheetName, i+2, err)
		}
		entries = append(entries, e)
	}
	return storage.Snapshot{Entries: entries}, true, nil
}

func parseRow(row []any) (core.Entry, error) {
	if len(row) < 5 {
		return core.Entry{}, fmt.Errorf("expected 5 columns, got %d", len(row))
	}
	kind, err := core.ParseKind(cell(row[1]))
	if err != nil {
		return core.Entry{}, err
	}
	cents, err := strconv.ParseInt(cell(row[2]), 10, 64)
	if err != nil {
		return core.Entry{}, fmt.Errorf("amount_cents %q: %w", cell(row[2]), err)
	}
	recordedAt, err := time.Parse(time.RFC3339Nano, cell(row[4]))
	if err != nil {
		return core.Entry{}, fmt.Errorf("recorded_at %q: %w", cell(row[4]), err)
	}
	e := core.Entry{
		ID:         cell(row[0]),
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		Category:   cell(row[3]),
		RecordedAt: recordedAt,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

func cell(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}

// Save clears the data range and rewrites every row: the same snapshot
// discipline as the file backend, just on a remote sheet.
func (c *Client) Save(ctx context.Context, snap storage.Snapshot) error {
	clearRng := fmt.Sprintf("%s!%s", c.sheetName, dataRange)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}
	if len(snap.Entries) == 0 {
		return nil
	}

	values := make([][]any, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		values = append(values, rowFor(e))
	}
	writeRng := fmt.Sprintf("%s!A2:E%d", c.sheetName, len(values)+1)
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRng, err)
	}
	return nil
}

// AppendRow adds a single entry row after the existing data. Used by the
// mirror worker, which receives entries one at a time.
func (c *Client) AppendRow(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	rng := fmt.Sprintf("%s!%s", c.sheetName, dataRange)
	vr := &gsheet.ValueRange{Values: [][]any{rowFor(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return c.sheetName, nil
}

func rowFor(e core.Entry) []any {
	return []any{
		e.ID,
		string(e.Kind),
		strconv.FormatInt(e.Amount.Cents, 10),
		e.Category,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}

var _ storage.Snapshotter = (*Client)(nil)
