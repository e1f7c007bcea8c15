package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/normalize"
)

// XLSXStore implements RecordStore over a local packaged-spreadsheet
// file, reading and rewriting the archive parts directly. Mutations
// are copy-on-write at the archive level and serialized behind a
// mutex: two overlapping writers would otherwise rebuild from the same
// on-disk snapshot and lose one update.
type XLSXStore struct {
	path      string
	sheetName string
	logger    logger.Logger

	mu sync.Mutex
}

var _ repository.RecordStore = (*XLSXStore)(nil)

// NewXLSXStore creates a store over the bookings file at path.
func NewXLSXStore(path, sheetName string, log logger.Logger) *XLSXStore {
	return &XLSXStore{path: path, sheetName: sheetName, logger: log}
}

// sheetSnapshot is one fully parsed view of the worksheet.
type sheetSnapshot struct {
	pkg       *xlsxPackage
	part      string
	doc       *etree.Document
	sheetData *etree.Element
	headerMap map[string]string // column letter -> header name
	cols      []string          // column letters in spreadsheet order
	rows      []repository.Row
}

func (s *XLSXStore) snapshot() (*sheetSnapshot, error) {
	pkg, err := openPackage(s.path)
	if err != nil {
		return nil, err
	}
	part, err := pkg.sheetPart(s.sheetName)
	if err != nil {
		return nil, err
	}
	shared, err := pkg.sharedStrings()
	if err != nil {
		return nil, err
	}
	doc, err := pkg.xml(part)
	if err != nil {
		return nil, err
	}
	sheetData := doc.FindElement("//sheetData")
	if sheetData == nil {
		return nil, fmt.Errorf("sheetData missing from %s", part)
	}

	snap := &sheetSnapshot{
		pkg:       pkg,
		part:      part,
		doc:       doc,
		sheetData: sheetData,
		headerMap: make(map[string]string),
	}

	for _, row := range sheetData.SelectElements("row") {
		position, err := strconv.Atoi(row.SelectAttrValue("r", ""))
		if err != nil {
			continue
		}
		cells := make(map[string]string)
		for _, cell := range row.SelectElements("c") {
			col := columnOf(cell.SelectAttrValue("r", ""))
			cells[col] = cellValue(cell, shared)
		}

		if position == 1 {
			cols := make([]string, 0, len(cells))
			for col := range cells {
				cols = append(cols, col)
			}
			// Column letters sort by (length, lexicographic) to
			// recover spreadsheet order: A..Z, AA, AB, ...
			sort.Slice(cols, func(a, b int) bool {
				if len(cols[a]) != len(cols[b]) {
					return len(cols[a]) < len(cols[b])
				}
				return cols[a] < cols[b]
			})
			snap.cols = cols
			for _, col := range cols {
				snap.headerMap[col] = cells[col]
			}
			continue
		}
		if len(snap.headerMap) == 0 {
			continue
		}

		values := make(map[string]string, len(snap.headerMap))
		for col, header := range snap.headerMap {
			values[header] = cells[col]
		}
		// Date cells may hold raw day-serials.
		values[entity.ColCheckinDate] = normalize.SheetDate(values[entity.ColCheckinDate])
		values[entity.ColCheckoutDate] = normalize.SheetDate(values[entity.ColCheckoutDate])

		snap.rows = append(snap.rows, repository.Row{
			Position: position,
			Record:   entity.RecordFromMap(values),
		})
	}
	return snap, nil
}

// columnOf strips the row digits from a cell reference like "C7".
func columnOf(ref string) string {
	return strings.TrimRight(ref, "0123456789")
}

// cellValue resolves a cell's text from the shared string table, an
// inline string, or the literal v value.
func cellValue(cell *etree.Element, shared []string) string {
	switch cell.SelectAttrValue("t", "") {
	case "s":
		v := cell.FindElement("v")
		if v == nil {
			return ""
		}
		idx, err := strconv.Atoi(strings.TrimSpace(v.Text()))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		var b strings.Builder
		for _, t := range cell.FindElements("is/t") {
			b.WriteString(t.Text())
		}
		return b.String()
	default:
		if v := cell.FindElement("v"); v != nil {
			return v.Text()
		}
		return ""
	}
}

// Headers returns the row 1 values in spreadsheet column order.
func (s *XLSXStore) Headers(ctx context.Context) ([]string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	headers := make([]string, 0, len(snap.cols))
	for _, col := range snap.cols {
		headers = append(headers, snap.headerMap[col])
	}
	return headers, nil
}

// List returns every data row with its position.
func (s *XLSXStore) List(ctx context.Context) ([]repository.Row, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.rows, nil
}

// Read returns the record at position.
func (s *XLSXStore) Read(ctx context.Context, position int) (entity.BookingRecord, error) {
	snap, err := s.snapshot()
	if err != nil {
		return entity.BookingRecord{}, err
	}
	for _, row := range snap.rows {
		if row.Position == position {
			return row.Record, nil
		}
	}
	return entity.BookingRecord{}, &repository.NotFoundError{Position: position}
}

// Update overwrites the header columns present in data on the row at
// position. Updated cells are written as inline strings; an emptied
// cell keeps its element with content and type cleared.
func (s *XLSXStore) Update(ctx context.Context, position int, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	if len(snap.headerMap) == 0 {
		return repository.ErrNoHeader
	}

	var rowElem *etree.Element
	for _, row := range snap.sheetData.SelectElements("row") {
		if row.SelectAttrValue("r", "") == strconv.Itoa(position) {
			rowElem = row
			break
		}
	}
	if rowElem == nil {
		return &repository.NotFoundError{Position: position}
	}

	for header, value := range data {
		col := ""
		for c, name := range snap.headerMap {
			if name == header {
				col = c
				break
			}
		}
		if col == "" {
			continue
		}
		cell := ensureCell(rowElem, col, position)
		for _, child := range cell.ChildElements() {
			cell.RemoveChild(child)
		}
		if value == "" {
			cell.RemoveAttr("t")
			continue
		}
		cell.CreateAttr("t", "inlineStr")
		cell.CreateElement("is").CreateElement("t").SetText(value)
	}

	return s.flush(snap)
}

// Append writes a new row at position rowCount+2 (row 1 is the
// header). Only non-empty values produce cells, always inline strings.
func (s *XLSXStore) Append(ctx context.Context, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	if len(snap.headerMap) == 0 {
		return repository.ErrNoHeader
	}

	newIndex := 2 + len(snap.rows)
	rowElem := snap.sheetData.CreateElement("row")
	rowElem.CreateAttr("r", strconv.Itoa(newIndex))

	for _, col := range snap.cols {
		value := data[snap.headerMap[col]]
		if value == "" {
			continue
		}
		cell := rowElem.CreateElement("c")
		cell.CreateAttr("r", fmt.Sprintf("%s%d", col, newIndex))
		cell.CreateAttr("t", "inlineStr")
		cell.CreateElement("is").CreateElement("t").SetText(value)
	}

	// Keep the declared dimension consistent with the highest row.
	if dim := snap.doc.FindElement("//dimension"); dim != nil && len(snap.cols) > 0 {
		first := snap.cols[0]
		last := snap.cols[len(snap.cols)-1]
		dim.CreateAttr("ref", fmt.Sprintf("%s1:%s%d", first, last, newIndex))
	}

	return s.flush(snap)
}

// ensureCell finds or creates the cell element for column at position.
func ensureCell(rowElem *etree.Element, col string, position int) *etree.Element {
	ref := fmt.Sprintf("%s%d", col, position)
	for _, cell := range rowElem.SelectElements("c") {
		if cell.SelectAttrValue("r", "") == ref {
			return cell
		}
	}
	cell := rowElem.CreateElement("c")
	cell.CreateAttr("r", ref)
	return cell
}

// flush serializes the mutated worksheet part and atomically rewrites
// the archive around it.
func (s *XLSXStore) flush(snap *sheetSnapshot) error {
	data, err := snap.doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize worksheet: %w", err)
	}
	if err := snap.pkg.rewrite(snap.part, data); err != nil {
		return err
	}
	s.logger.Debug("Bookings file rewritten", "path", s.path, "part", snap.part)
	return nil
}
