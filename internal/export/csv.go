// Package export serializes completed invoices into reimbursement reports.
package export

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format is a report encoding.
type Format string

const FormatCSV Format = "csv"

// ParseFormat returns the Format named by s. ok is false for unsupported names.
func ParseFormat(s string) (f Format, ok bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type of the encoded report.
func (f Format) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension of the encoded report without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Header is the first record of every CSV report.
var Header = []string{"文件名", "类别", "金额 (RMB)", "附件", "备注", "创建时间"}

// AttachmentSeparator joins attachment names inside a single cell.
const AttachmentSeparator = ", "

const utf8BOM = "\ufeff"

// Row is one completed invoice in report form.
type Row struct {
	Filename    string
	Category    string
	Amount      decimal.Decimal
	Attachments []string
	Notes       string
	CreatedAt   time.Time
}

// Options tune the CSV encoding.
type Options struct {
	// BOM writes a UTF-8 byte order mark before the header.
	BOM bool
	// Location renders CreatedAt; nil means UTC.
	Location *time.Location
}

// WriteCSV writes the header followed by one record per row, quoting fields per RFC 4180.
// An empty rows slice produces a header-only report.
func WriteCSV(w io.Writer, rows []Row, opt Options) error {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	if opt.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Filename,
			r.Category,
			r.Amount.StringFixed(2),
			strings.Join(r.Attachments, AttachmentSeparator),
			r.Notes,
			r.CreatedAt.In(loc).Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
