package repository

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// Well-known part paths inside the spreadsheet package.
const (
	workbookPart      = "xl/workbook.xml"
	workbookRelsPart  = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
)

// xlsxPackage is a snapshot of the spreadsheet archive as a part
// store: a mapping from part path to raw bytes, in archive order.
type xlsxPackage struct {
	path  string
	parts map[string][]byte
	order []string
}

// openPackage reads every part of the archive into memory. Each call
// takes an independent snapshot, so concurrent reads need no
// coordination.
func openPackage(path string) (*xlsxPackage, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open bookings file %s: %w", path, err)
	}
	defer r.Close()

	pkg := &xlsxPackage{path: path, parts: make(map[string][]byte, len(r.File))}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		pkg.parts[f.Name] = data
		pkg.order = append(pkg.order, f.Name)
	}
	return pkg, nil
}

// part returns the raw bytes of one part.
func (p *xlsxPackage) part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// xml parses one part as an XML document.
func (p *xlsxPackage) xml(name string) (*etree.Document, error) {
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s missing from %s", name, p.path)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse part %s: %w", name, err)
	}
	return doc, nil
}

// sheetPart resolves the worksheet storage part for a sheet name by
// cross-referencing the workbook's sheet table against the
// relationship table.
func (p *xlsxPackage) sheetPart(sheetName string) (string, error) {
	workbook, err := p.xml(workbookPart)
	if err != nil {
		return "", err
	}
	rels, err := p.xml(workbookRelsPart)
	if err != nil {
		return "", err
	}

	var rid string
	for _, sheet := range workbook.FindElements("//sheet") {
		if sheet.SelectAttrValue("name", "") == sheetName {
			rid = sheet.SelectAttrValue("r:id", "")
			break
		}
	}
	if rid == "" {
		return "", fmt.Errorf("sheet %q not found in workbook", sheetName)
	}

	for _, rel := range rels.FindElements("//Relationship") {
		if rel.SelectAttrValue("Id", "") != rid {
			continue
		}
		target := rel.SelectAttrValue("Target", "")
		target = strings.TrimPrefix(target, "/")
		if !strings.HasPrefix(target, "xl/") {
			target = "xl/" + target
		}
		return target, nil
	}
	return "", fmt.Errorf("relationship %s for sheet %q not found", rid, sheetName)
}

// sharedStrings returns the de-duplicated string table, empty when the
// part is absent.
func (p *xlsxPackage) sharedStrings() ([]string, error) {
	if _, ok := p.parts[sharedStringsPart]; !ok {
		return nil, nil
	}
	doc, err := p.xml(sharedStringsPart)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, si := range doc.FindElements("//si") {
		var b strings.Builder
		for _, t := range si.FindElements(".//t") {
			b.WriteString(t.Text())
		}
		out = append(out, b.String())
	}
	return out, nil
}

// rewrite builds a new archive containing every unchanged part
// verbatim plus the rebuilt part, then atomically replaces the
// original file. A crash mid-rebuild leaves the original untouched.
func (p *xlsxPackage) rewrite(changedPart string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".bookings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	zw := zip.NewWriter(tmp)
	for _, name := range p.order {
		content := p.parts[name]
		if name == changedPart {
			content = data
		}
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := io.Copy(w, bytes.NewReader(content)); err != nil {
			return fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if _, ok := p.parts[changedPart]; !ok {
		w, err := zw.Create(changedPart)
		if err != nil {
			return fmt.Errorf("create part %s: %w", changedPart, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write part %s: %w", changedPart, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("replace bookings file: %w", err)
	}
	return nil
}
