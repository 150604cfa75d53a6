// Package export renders capture entries as TXT, CSV or XLSX downloads.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type Format string

const (
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("invalid format. Supported formats: txt, csv, excel, xlsx")

// Row is one exported entry with the context of its session.
type Row struct {
	ScannedAt        time.Time
	SymbologyName    string
	Value            string
	Quantity         int
	Processed        bool
	Notes            string
	DeviceLabel      string
	DeviceAddress    string
	SessionTimestamp time.Time
}

var header = []string{"Date", "Symbology", "Data", "Quantity"}

const (
	longDateLayout = "Monday, January 2, 2006 15:04:05"
	timeLayout     = "15:04:05"
	separator      = "-----------------------------------------"
)

// ParseFormat accepts txt, csv, xlsx and excel (an alias of xlsx),
// case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt":
		return FormatTXT, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain"
	}
}

// Filename builds barcode_export_<Y-m-d_H-i-s>.<ext>.
func Filename(f Format, at time.Time) string {
	return fmt.Sprintf("barcode_export_%s.%s", at.Format("2006-01-02_15-04-05"), f)
}

// Write renders rows in format f. name and createdAt only appear in the
// TXT header.
func Write(w io.Writer, f Format, name string, createdAt time.Time, rows []Row) error {
	switch f {
	case FormatTXT:
		return WriteTXT(w, name, createdAt, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}
