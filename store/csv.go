package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"rya_attendance_backend/models"

	"go.uber.org/zap"
)

const (
	BackupSuffix    = ".backup"
	FilePermissions = 0644
)

// utf8BOM is prepended by spreadsheet tools on UTF-8 CSV export.
var utf8BOM = []byte("\xef\xbb\xbf")

// CSVPersister keeps the roster in a CSV file with a Name column and one
// column per trip day.
type CSVPersister struct {
	path   string
	days   []string
	backup bool
	logger *zap.Logger

	// mu serializes writes from every session sharing this file.
	mu sync.Mutex
}

func NewCSVPersister(path string, days []string, backup bool, logger *zap.Logger) *CSVPersister {
	return &CSVPersister{path: path, days: days, backup: backup, logger: logger}
}

func (p *CSVPersister) Path() string {
	return p.path
}

func (p *CSVPersister) Load(ctx context.Context) (*models.Roster, error) {
	file, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingResource, p.path)
		}
		return nil, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			p.logger.Warn("error closing attendance file", zap.Error(err))
		}
	}()

	roster, err := DecodeCSV(file, p.days)
	if err != nil {
		return nil, err
	}
	for _, day := range p.days {
		if !contains(roster.Header, day) {
			p.logger.Warn("day column missing, defaulting to Absent",
				zap.String("file", p.path), zap.String("day", day))
		}
	}
	return roster, nil
}

// DecodeCSV parses a roster. Short rows and missing day columns load as
// Absent; a missing Name column is malformed.
func DecodeCSV(r io.Reader, days []string) (*models.Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	bom := bytes.HasPrefix(data, utf8BOM)
	data = bytes.TrimPrefix(data, utf8BOM)
	crlf := false
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		crlf = true
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedResource)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResource, err)
	}

	nameIdx := -1
	for i, col := range header {
		if col == models.NameColumn {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: no %q column", ErrMalformedResource, models.NameColumn)
	}

	roster := &models.Roster{
		Header:        header,
		Attendees:     []*models.Attendee{},
		ByteOrderMark: bom,
		CRLF:          crlf,
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResource, err)
		}

		a := &models.Attendee{Status: make(map[string]models.Status, len(days))}
		for i, col := range header {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			switch {
			case i == nameIdx:
				a.Name = cell
			case contains(days, col):
				a.Status[col] = models.ParseStatus(cell)
			default:
				if a.Extra == nil {
					a.Extra = make(map[string]string)
				}
				a.Extra[col] = cell
			}
		}
		for _, day := range days {
			if _, ok := a.Status[day]; !ok {
				a.Status[day] = models.StatusAbsent
			}
		}
		roster.Attendees = append(roster.Attendees, a)
	}
	return roster, nil
}

// EncodeCSV writes roster with its loaded column order, byte order mark and
// line endings.
func EncodeCSV(w io.Writer, roster *models.Roster, days []string) error {
	if roster.ByteOrderMark {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	writer := csv.NewWriter(w)
	writer.UseCRLF = roster.CRLF
	cols := roster.Columns(days)
	if err := writer.Write(cols); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for _, a := range roster.Attendees {
		for i, col := range cols {
			switch {
			case col == models.NameColumn:
				record[i] = a.Name
			case contains(days, col):
				record[i] = string(models.ParseStatus(string(a.Status[col])))
			default:
				record[i] = a.Extra[col]
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save writes the roster to a temp file next to the target and renames it
// into place, so readers only ever see a complete file.
func (p *CSVPersister) Save(ctx context.Context, roster *models.Roster) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, roster, p.days); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if p.backup {
		if current, err := os.ReadFile(p.path); err == nil {
			if err := os.WriteFile(p.path+BackupSuffix, current, FilePermissions); err != nil {
				p.logger.Warn("failed to create backup", zap.Error(err))
			}
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, FilePermissions); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("replace %s: %w", p.path, err)
	}

	p.logger.Debug("roster persisted", zap.String("file", p.path), zap.Int("attendees", len(roster.Attendees)))
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ping checks that the attendance file exists.
func (p *CSVPersister) Ping(ctx context.Context) error {
	if _, err := os.Stat(p.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingResource, p.path)
		}
		return err
	}
	return nil
}
