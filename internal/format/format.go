// Package format declares the known accounting file formats and detects which
// one a file on disk is, by extension plus content sniffing.
package format

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// sniffLimit is how many bytes of a file are inspected for content matching.
const sniffLimit = 10000

// Acronyms of the built-in formats.
const (
	AcronymBeancount     = "BEAN"
	AcronymGnuCashXML    = "GC-XML"
	AcronymGnuCashSQLite = "GC-SQLITE"
	AcronymLedgerBook    = "LB-YAML"
	AcronymQIF           = "QIF"
	AcronymBankingZV     = "BZV-JSON"
	AcronymMsMoney       = "MONEY"
)

// Format describes one accounting file format. PatternFile, when set, names a
// ZIP member whose content is matched instead of the archive bytes.
type Format struct {
	Name           string
	Acronym        string
	Ext            string
	WikidataID     string
	ContentPattern *regexp.Regexp
	PatternFile    string
}

// Registry is an ordered list of formats. Declaration order matters: when two
// formats share an extension the more specific content pattern is declared
// first and wins.
type Registry struct {
	formats   []Format
	byAcronym map[string]Format
}

// pattern compiles a case-insensitive, dot-matches-newline content pattern.
func pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?is)" + expr)
}

// NewRegistry returns the registry of built-in formats.
func NewRegistry() *Registry {
	return newRegistry([]Format{
		{
			Name:           "Beancount",
			Acronym:        AcronymBeancount,
			Ext:            ".beancount",
			WikidataID:     "Q130456404",
			ContentPattern: pattern(`option "title"`),
		},
		{
			Name:           "GnuCash XML",
			Acronym:        AcronymGnuCashXML,
			Ext:            ".gnucash",
			WikidataID:     "Q130445392",
			ContentPattern: pattern(`<gnc-v2`),
		},
		{
			Name:           "GnuCash SQLite",
			Acronym:        AcronymGnuCashSQLite,
			Ext:            ".gnucash",
			WikidataID:     "Q130445392",
			ContentPattern: pattern(`SQLite format 3`),
		},
		{
			Name:           "Nomina Ledger Book YAML",
			Acronym:        AcronymLedgerBook,
			Ext:            ".yaml",
			WikidataID:     "Q281876",
			ContentPattern: pattern(`file_type:\s*NOMINA-LEDGER-BOOK-YAML|accounts:\s*\w+:`),
		},
		{
			Name:           "Quicken Interchange Format",
			Acronym:        AcronymQIF,
			Ext:            ".qif",
			WikidataID:     "Q750657",
			ContentPattern: pattern(`!Account|!Type:`),
		},
		{
			Name:           "Banking ZV JSON",
			Acronym:        AcronymBankingZV,
			Ext:            ".json",
			WikidataID:     "Q130443951",
			ContentPattern: pattern(`"AcctId":\s*"[^"]+".*"OwnrAcctCcy":\s*"[^"]+"`),
		},
		{
			Name:           "Microsoft Money ZIP",
			Acronym:        AcronymMsMoney,
			Ext:            ".zip",
			WikidataID:     "Q117266",
			ContentPattern: pattern(`file_type:\s*NOMINA-MICROSOFT-MONEY-YAML`),
			PatternFile:    "nomina.yaml",
		},
	})
}

func newRegistry(formats []Format) *Registry {
	byAcronym := make(map[string]Format, len(formats))
	for _, f := range formats {
		byAcronym[f.Acronym] = f
	}
	return &Registry{formats: formats, byAcronym: byAcronym}
}

// Formats returns the declared formats in order.
func (r *Registry) Formats() []Format {
	return r.formats
}

// ByAcronym returns the format with the given acronym.
func (r *Registry) ByAcronym(acronym string) (Format, bool) {
	f, ok := r.byAcronym[acronym]
	return f, ok
}

// ByExtension returns the first declared format with the path's extension,
// ignoring content. For callers that already trust the source.
func (r *Registry) ByExtension(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range r.formats {
		if strings.ToLower(f.Ext) == ext {
			return f, true
		}
	}
	return Format{}, false
}

// Detect determines the format of the file at path. ZIP archives are searched
// for the declared pattern files; plain files are matched on extension plus a
// decoded content prefix. The first declared match wins.
func (r *Registry) Detect(path string) (Format, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".zip" {
		return r.detectInZip(path)
	}

	content, err := readPrefix(path)
	if err != nil {
		return Format{}, false, err
	}

	for _, f := range r.formats {
		if f.PatternFile != "" {
			continue
		}
		if strings.ToLower(f.Ext) == ext && f.ContentPattern.MatchString(content) {
			return f, true, nil
		}
	}
	return Format{}, false, nil
}

// detectInZip checks the zip-capable formats by opening the archive and
// matching their pattern file's content.
func (r *Registry) detectInZip(path string) (Format, bool, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return Format{}, false, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer archive.Close()

	for _, f := range r.formats {
		if f.PatternFile == "" {
			continue
		}
		member, err := archive.Open(f.PatternFile)
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(member, sniffLimit))
		member.Close()
		if err != nil {
			continue
		}
		if f.ContentPattern.MatchString(decodeBestEffort(raw)) {
			return f, true, nil
		}
	}
	return Format{}, false, nil
}

// readPrefix reads and decodes the sniff prefix of a file.
func readPrefix(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, sniffLimit))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return decodeBestEffort(raw), nil
}

// decodeBestEffort interprets raw bytes as UTF-8, falling back to Latin-1,
// which maps every byte to a rune and so can never fail.
func decodeBestEffort(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
