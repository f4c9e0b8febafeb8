package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reimburse/internal/export"
	"reimburse/internal/model"
	"reimburse/internal/repository"
)

// ExportResult is an encoded reimbursement report.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// CategoryTotal sums the completed invoices of one category.
type CategoryTotal struct {
	Category model.Category  `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// Summary is the per-category breakdown of all completed invoices.
type Summary struct {
	Categories []CategoryTotal `json:"categories"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
}

// ExportService reads completed invoices and renders reports from them.
type ExportService interface {
	// Export encodes every completed invoice, oldest first, in the requested format.
	Export(ctx context.Context, format string) (*ExportResult, error)
	// Summary totals completed invoices by category.
	Summary(ctx context.Context) (*Summary, error)
}

type exportService struct {
	repo  repository.InvoiceRepository
	edges repository.AttachmentRepository
	tx    repository.Transactor
	opt   export.Options
	now   func() time.Time
}

// NewExportService constructs a new ExportService.
func NewExportService(
	repo repository.InvoiceRepository,
	edges repository.AttachmentRepository,
	tx repository.Transactor,
	opt export.Options,
) ExportService {
	return &exportService{repo: repo, edges: edges, tx: tx, opt: opt, now: time.Now}
}

func (s *exportService) completed(ctx context.Context) ([]model.Invoice, error) {
	status := model.StatusCompleted
	items, err := s.repo.List(ctx, repository.ListFilter{Status: &status, Ascending: true})
	if err != nil {
		return nil, storageErr("list completed invoices", err)
	}
	return items, nil
}

func (s *exportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	f, ok := export.ParseFormat(format)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	ctx, span := tracer.Start(ctx, "invoice.export", trace.WithAttributes(attribute.String("export.format", string(f))))
	defer span.End()

	var (
		invoices []model.Invoice
		names    map[string][]string
	)
	// Invoices and edge names are read from one repeatable-read snapshot.
	err := s.tx.ReadSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if invoices, err = s.completed(ctx); err != nil {
			return err
		}
		if names, err = s.edges.AttachmentNames(ctx); err != nil {
			return storageErr("resolve attachment names", err)
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, asStorageErr("export", err)
	}

	rows := make([]export.Row, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, reportRow(inv, names[inv.ID]))
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows, s.opt); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.rows", len(rows)))

	loc := s.opt.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ExportResult{
		Filename:    "invoices_export_" + s.now().In(loc).Format("20060102_150405") + "." + f.Extension(),
		ContentType: f.ContentType(),
		Body:        buf.Bytes(),
		Rows:        len(rows),
	}, nil
}

// reportRow merges the typed attachment names with the filenames of linked attachment
// invoices, keeping the typed names first and dropping duplicates.
func reportRow(inv model.Invoice, linked []string) export.Row {
	r := export.Row{
		Filename:  inv.OriginalFilename,
		CreatedAt: inv.CreatedAt,
	}
	if inv.Category != nil {
		r.Category = string(*inv.Category)
	}
	if inv.Amount != nil {
		r.Amount = *inv.Amount
	}
	if inv.Notes != nil {
		r.Notes = *inv.Notes
	}
	seen := make(map[string]bool, len(inv.Attachments)+len(linked))
	for _, group := range [][]string{inv.Attachments, linked} {
		for _, n := range group {
			if !seen[n] {
				seen[n] = true
				r.Attachments = append(r.Attachments, n)
			}
		}
	}
	return r
}

func (s *exportService) Summary(ctx context.Context) (*Summary, error) {
	invoices, err := s.completed(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[model.Category]*CategoryTotal)
	sum := &Summary{Categories: make([]CategoryTotal, 0), Total: decimal.Zero}
	for _, inv := range invoices {
		if inv.Category == nil || inv.Amount == nil {
			continue
		}
		ct, ok := byCategory[*inv.Category]
		if !ok {
			ct = &CategoryTotal{Category: *inv.Category, Total: decimal.Zero}
			byCategory[*inv.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(*inv.Amount)
		sum.Count++
		sum.Total = sum.Total.Add(*inv.Amount)
	}
	for _, c := range model.Categories {
		if ct, ok := byCategory[c]; ok {
			sum.Categories = append(sum.Categories, *ct)
		}
	}
	return sum, nil
}

func asStorageErr(op string, err error) error {
	if errors.Is(err, ErrStorage) {
		return err
	}
	return storageErr(op, err)
}
