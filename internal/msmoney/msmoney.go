// Package msmoney reads Microsoft Money database dumps: a ZIP file (or
// directory) holding one JSON dump per Jet table plus a nomina.yaml header,
// as produced by the mdb-tools based export script.
package msmoney

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/model"
)

// HeaderFileType marks a nomina.yaml header inside a Money dump archive.
const HeaderFileType = "NOMINA-MICROSOFT-MONEY-YAML"

// ZipHeader is the nomina.yaml manifest written next to the table dumps.
type ZipHeader struct {
	FileType   string `yaml:"file_type"`
	Version    string `yaml:"version"`
	Name       string `yaml:"name"`
	Date       string `yaml:"date"`
	Size       int64  `yaml:"size"`
	SHA256     string `yaml:"sha256"`
	JetVersion string `yaml:"jetversion"`
}

// Row is one record of a table dump. mdb-json emits flat objects, so values
// are strings, numbers and booleans.
type Row map[string]any

// Str returns the field as a string; numbers are rendered without a decimal
// point when integral.
func (r Row) Str(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns the field as a float64, accepting numeric strings.
func (r Row) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Database is a loaded Money dump: the manifest header plus the rows of each
// table keyed by table name.
type Database struct {
	Header *ZipHeader
	Tables map[string][]Row
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{Tables: make(map[string][]Row)}
}

// Rows returns the rows of the named table, or nil when absent.
func (d *Database) Rows(table string) []Row {
	return d.Tables[table]
}

// TableNames returns the loaded table names in sorted order.
func (d *Database) TableNames() []string {
	names := make([]string, 0, len(d.Tables))
	for name := range d.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a Money dump from a ZIP archive or an unpacked directory.
func (d *Database) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening money dump: %w", err)
	}
	if info.IsDir() {
		return d.loadDirectory(path)
	}
	return d.loadZip(path)
}

func (d *Database) loadZip(path string) error {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening money zip: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("reading %s: %w", file.Name, err)
		}
		err = d.handleFile(file.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) loadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading money dump directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(path, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		err = d.handleFile(entry.Name(), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) handleFile(name string, r io.Reader) error {
	base := filepath.Base(name)
	switch {
	case base == "nomina.yaml":
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading header: %w", err)
		}
		var header ZipHeader
		if err := yaml.Unmarshal(data, &header); err != nil {
			return fmt.Errorf("parsing header: %w", err)
		}
		d.Header = &header
	case strings.HasSuffix(base, ".json"):
		table := strings.TrimSuffix(base, ".json")
		rows, err := readRows(r)
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
		d.Tables[table] = rows
	}
	return nil
}

// readRows decodes a table dump. mdb-json writes one object per line; a
// plain JSON array is accepted as well.
func readRows(r io.Reader) ([]Row, error) {
	decoder := json.NewDecoder(r)
	var rows []Row
	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "[") {
			var batch []Row
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, err
			}
			rows = append(rows, batch...)
			continue
		}
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Stats summarizes the accounts and transactions of the dump.
func (d *Database) Stats() model.Stats {
	stats := model.Stats{
		Currencies: map[string]int{},
	}
	for _, row := range d.Rows("ACCT") {
		stats.Accounts++
		currency := row.Str("currency")
		if currency == "" {
			currency = "UNKNOWN"
		}
		stats.Currencies[currency]++
	}
	for _, row := range d.Rows("TRN") {
		stats.Transactions++
		date, _, _ := strings.Cut(row.Str("dt"), " ")
		if iso, ok := dateutil.ParseDate(date); ok {
			if stats.StartDate == "" || iso < stats.StartDate {
				stats.StartDate = iso
			}
			if stats.EndDate == "" || iso > stats.EndDate {
				stats.EndDate = iso
			}
		}
	}
	if d.Header != nil {
		stats.Other = map[string]any{"name": d.Header.Name, "jetversion": d.Header.JetVersion}
	}
	return stats
}
