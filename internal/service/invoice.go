package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reimburse/internal/model"
	"reimburse/internal/repository"
	"reimburse/internal/storage"
)

var tracer = otel.Tracer("reimburse/internal/service")

// UploadFile is one document of a bulk upload.
type UploadFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// BulkUploadItem is the outcome of one file in a bulk upload.
type BulkUploadItem struct {
	Filename string         `json:"filename"`
	Invoice  *model.Invoice `json:"invoice,omitempty"`
	Error    string         `json:"error,omitempty"`
	Err      error          `json:"-"`
}

// BulkUploadResult aggregates per-file outcomes of a bulk upload.
type BulkUploadResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkUploadItem `json:"items"`
}

// InvoiceFile is an open invoice document. The caller must close Body.
type InvoiceFile struct {
	Invoice     *model.Invoice
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// InvoiceService owns invoice records and their documents.
type InvoiceService interface {
	// Upload stores the document, then creates a pending invoice for it.
	// The object is removed again if the record cannot be saved.
	Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Invoice, error)

	// BulkUpload uploads each file independently; one failure never affects the others.
	BulkUpload(ctx context.Context, files []UploadFile) *BulkUploadResult

	// List returns invoices newest first. An empty status lists every invoice.
	List(ctx context.Context, status string) ([]model.Invoice, error)

	// Get returns a single invoice by its ID.
	Get(ctx context.Context, id string) (*model.Invoice, error)

	// Delete removes the invoice and every attachment edge touching it, then releases its document.
	Delete(ctx context.Context, id string) error

	// OpenFile opens the stored document of an invoice.
	OpenFile(ctx context.Context, id string) (*InvoiceFile, error)

	// FileURL returns a time-limited download URL for the invoice document.
	FileURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

type invoiceService struct {
	store  storage.Storage
	repo   repository.InvoiceRepository
	edges  repository.AttachmentRepository
	tx     repository.Transactor
	logger zerolog.Logger
	now    func() time.Time
}

// NewInvoiceService constructs a new InvoiceService.
func NewInvoiceService(
	store storage.Storage,
	repo repository.InvoiceRepository,
	edges repository.AttachmentRepository,
	tx repository.Transactor,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		store:  store,
		repo:   repo,
		edges:  edges,
		tx:     tx,
		logger: logger.With().Str("component", "invoice_service").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *invoiceService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Invoice, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	// Browsers on Windows may send the full client path.
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(originalFilename), `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return nil, invalid("file", "filename is required")
	}
	fileType := model.FileTypeOf(name)
	contentType, ok := model.ContentTypeFor(fileType)
	if !ok {
		return nil, invalid("file", "file type %q is not allowed", fileType)
	}

	id := uuid.New().String()
	key := "invoices/" + id + "." + fileType

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": name,
		},
	})
	if err != nil {
		return nil, storageErr("upload to storage", err)
	}

	now := s.now()
	inv := &model.Invoice{
		ID:               id,
		OriginalFilename: name,
		FileType:         fileType,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		ContentType:      contentType,
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stored, err := s.repo.Create(ctx, inv)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("storage_path", key).Msg("rollback delete failed")
			return nil, storageErr("db save", fmt.Errorf("%v; rollback delete failed: %v", err, delErr))
		}
		return nil, storageErr("db save", err)
	}
	return stored, nil
}

func (s *invoiceService) BulkUpload(ctx context.Context, files []UploadFile) *BulkUploadResult {
	res := &BulkUploadResult{Items: make([]BulkUploadItem, 0, len(files))}
	for _, f := range files {
		item := BulkUploadItem{Filename: f.Filename}
		inv, err := s.uploadOne(ctx, f)
		if err != nil {
			item.Err = err
			item.Error = err.Error()
			res.Failed++
			s.logger.Warn().Err(err).Str("filename", f.Filename).Msg("bulk upload item failed")
		} else {
			item.Invoice = inv
			res.Succeeded++
		}
		res.Items = append(res.Items, item)
	}
	return res
}

func (s *invoiceService) uploadOne(ctx context.Context, f UploadFile) (*model.Invoice, error) {
	// Reject before opening so invalid files never reach storage.
	if _, ok := model.ContentTypeFor(model.FileTypeOf(f.Filename)); !ok {
		return nil, invalid("file", "file type %q is not allowed", model.FileTypeOf(f.Filename))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, invalid("file", "cannot open uploaded file")
	}
	defer rc.Close()
	return s.Upload(ctx, rc, f.Filename, f.Size)
}

func (s *invoiceService) List(ctx context.Context, status string) ([]model.Invoice, error) {
	var f repository.ListFilter
	if status != "" {
		st := model.Status(status)
		if !st.Valid() {
			return nil, invalid("status", "unknown status %q", status)
		}
		f.Status = &st
	}
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, storageErr("list invoices", err)
	}
	return items, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*model.Invoice, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load invoice", err)
	}
	return inv, nil
}

// Delete cascades the attachment edges and removes the row in one transaction holding the
// invoice row lock, then releases the document. A release failure is reported after the
// record is already gone.
func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	ctx, span := tracer.Start(ctx, "invoice.delete", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	var deleted *model.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return storageErr("lock invoice", err)
		}
		n, err := s.edges.RemoveAllFor(ctx, id)
		if err != nil {
			return storageErr("remove attachment edges", err)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return storageErr("delete invoice", err)
		}
		span.SetAttributes(attribute.Int64("invoice.edges_removed", n))
		deleted = inv
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrStorage) {
			err = storageErr("delete invoice", err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.store.Delete(ctx, deleted.StoragePath); err != nil {
		s.logger.Error().Err(err).Str("invoice_id", id).Str("storage_path", deleted.StoragePath).
			Msg("invoice deleted but document release failed")
		span.SetStatus(codes.Error, err.Error())
		return storageErr("release document", err)
	}
	return nil
}

func (s *invoiceService) OpenFile(ctx context.Context, id string) (*InvoiceFile, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	body, info, err := s.store.Get(ctx, inv.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("open document", err)
	}
	ct := info.ContentType
	if ct == "" {
		ct = inv.ContentType
	}
	return &InvoiceFile{Invoice: inv, Body: body, ContentType: ct, Size: info.Size}, nil
}

func (s *invoiceService) FileURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, inv.StoragePath, expiry)
	if err != nil {
		return "", storageErr("presign document", err)
	}
	return u, nil
}
