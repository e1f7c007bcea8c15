package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/normalize"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

const (
	sheetsCallTimeout = 15 * time.Second
	sheetsMaxRetries  = 3
)

// SheetsStore implements RecordStore over a remote Google Sheets
// worksheet: row 1 is the header, row 2 the first data row, partial
// updates match by column name, appends use RAW value semantics.
type SheetsStore struct {
	service   *sheets.Service
	sheetID   string
	sheetName string
	logger    logger.Logger
}

var _ repository.RecordStore = (*SheetsStore)(nil)

// NewSheetsStore authenticates with the service-account credential
// blob and opens the spreadsheet by id. Credential blobs pasted into
// an env file often carry literal \n sequences in private_key; those
// are converted to real line breaks before use.
func NewSheetsStore(ctx context.Context, credentialJSON, sheetID, sheetName string, log logger.Logger) (*SheetsStore, error) {
	creds, err := normalizeCredentials(credentialJSON)
	if err != nil {
		return nil, fmt.Errorf("service account credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(creds, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("service account credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{
		service:   service,
		sheetID:   sheetID,
		sheetName: sheetName,
		logger:    log,
	}, nil
}

func normalizeCredentials(raw string) ([]byte, error) {
	var blob map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	if pk, ok := blob["private_key"].(string); ok && strings.Contains(pk, `\n`) {
		blob["private_key"] = strings.ReplaceAll(pk, `\n`, "\n")
	}
	return json.Marshal(blob)
}

// withRetry runs a call up to sheetsMaxRetries times with a bounded
// per-attempt timeout and linear backoff in between. Transient network
// conditions at the service boundary are expected; a hung call is not.
func (s *SheetsStore) withRetry(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= sheetsMaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
		err = call(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		s.logger.Warn("Sheets call failed", "operation", op, "attempt", attempt, "error", err)
		if attempt < sheetsMaxRetries {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, sheetsMaxRetries, err)
}

func (s *SheetsStore) getRange(ctx context.Context, readRange string) ([][]interface{}, error) {
	var resp *sheets.ValueRange
	err := s.withRetry(ctx, "sheets get "+readRange, func(ctx context.Context) error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.sheetID, readRange).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Headers returns row 1 of the worksheet.
func (s *SheetsStore) Headers(ctx context.Context) ([]string, error) {
	values, err := s.getRange(ctx, fmt.Sprintf("%s!1:1", s.sheetName))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, repository.ErrNoHeader
	}
	headers := make([]string, 0, len(values[0]))
	for _, v := range values[0] {
		headers = append(headers, cellString(v))
	}
	return headers, nil
}

// List returns every data row with its 1-based position.
func (s *SheetsStore) List(ctx context.Context) ([]repository.Row, error) {
	values, err := s.getRange(ctx, s.sheetName)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, repository.ErrNoHeader
	}
	headers := values[0]

	var rows []repository.Row
	for i, raw := range values[1:] {
		rec := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				rec[cellString(h)] = cellString(raw[j])
			} else {
				rec[cellString(h)] = ""
			}
		}
		rec[entity.ColCheckinDate] = normalize.SheetDate(rec[entity.ColCheckinDate])
		rec[entity.ColCheckoutDate] = normalize.SheetDate(rec[entity.ColCheckoutDate])
		rows = append(rows, repository.Row{
			Position: i + 2,
			Record:   entity.RecordFromMap(rec),
		})
	}
	return rows, nil
}

// Read returns the record at position.
func (s *SheetsStore) Read(ctx context.Context, position int) (entity.BookingRecord, error) {
	headers, err := s.Headers(ctx)
	if err != nil {
		return entity.BookingRecord{}, err
	}
	values, err := s.getRange(ctx, fmt.Sprintf("%s!%d:%d", s.sheetName, position, position))
	if err != nil {
		return entity.BookingRecord{}, err
	}
	if len(values) == 0 {
		return entity.BookingRecord{}, &repository.NotFoundError{Position: position}
	}
	raw := values[0]
	rec := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(raw) {
			rec[h] = cellString(raw[i])
		} else {
			rec[h] = ""
		}
	}
	return entity.RecordFromMap(rec), nil
}

// Append writes a new row ordered by the header; keys outside the
// header are dropped and absent columns come out blank.
func (s *SheetsStore) Append(ctx context.Context, data map[string]string) error {
	headers, err := s.Headers(ctx)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = data[h]
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	return s.withRetry(ctx, "sheets append", func(ctx context.Context) error {
		_, err := s.service.Spreadsheets.Values.
			Append(s.sheetID, s.sheetName, vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
}

// Update overwrites only the header columns present in data, writing
// the full row range back so untouched columns keep their value.
func (s *SheetsStore) Update(ctx context.Context, position int, data map[string]string) error {
	headers, err := s.Headers(ctx)
	if err != nil {
		return err
	}
	values, err := s.getRange(ctx, fmt.Sprintf("%s!%d:%d", s.sheetName, position, position))
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return &repository.NotFoundError{Position: position}
	}
	raw := values[0]

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		if v, ok := data[h]; ok {
			row[i] = v
		} else if i < len(raw) {
			row[i] = cellString(raw[i])
		} else {
			row[i] = ""
		}
	}

	updateRange := fmt.Sprintf("%s!A%d:%s%d", s.sheetName, position, columnLetter(len(headers)), position)
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	return s.withRetry(ctx, "sheets update "+updateRange, func(ctx context.Context) error {
		_, err := s.service.Spreadsheets.Values.
			Update(s.sheetID, updateRange, vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
}

// columnLetter converts a 1-based column number to its letter form,
// correct past Z (A..Z, AA, AB, ...).
func columnLetter(n int) string {
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}
