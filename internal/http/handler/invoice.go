package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"reimburse/internal/service"
)

// ListInvoices lists invoices newest first, optionally filtered by status.
//
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param status query string false "pending or completed"
// @Success 200 {array} model.Invoice
// @Failure 400 {object} errorPayload
// @Router /api/invoices [get]
func ListInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), c.Query("status"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// UploadInvoice stores one document (multipart/form-data, field name: file) as a pending invoice.
//
// @Summary Upload an invoice
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or image"
// @Success 201 {object} model.Invoice
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/invoices [post]
func UploadInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		inv, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// BulkUploadInvoices uploads every file of the "files" field independently.
// It answers 201 when all succeed, 207 when some fail and 400 when all fail.
//
// @Summary Upload several invoices
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "PDF or image files"
// @Success 201 {object} service.BulkUploadResult
// @Success 207 {object} service.BulkUploadResult
// @Failure 400 {object} service.BulkUploadResult
// @Router /api/invoices/batch [post]
func BulkUploadInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "at least one file is required")
		}

		headers := form.File["files"]
		files := make([]service.UploadFile, 0, len(headers))
		for _, fh := range headers {
			files = append(files, service.UploadFile{
				Filename: fh.Filename,
				Size:     fh.Size,
				Open:     func() (io.ReadCloser, error) { return fh.Open() },
			})
		}

		res := svc.BulkUpload(c.UserContext(), files)
		status := fiber.StatusCreated
		switch {
		case res.Succeeded == 0:
			status = fiber.StatusBadRequest
		case res.Failed > 0:
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(res)
	}
}

// GetInvoice returns a single invoice.
//
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id} [get]
func GetInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		inv, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(inv)
	}
}

// updateRequest is the PUT body. Attachments is either the comma separated
// text typed by the user or a JSON array of names.
type updateRequest struct {
	Status      string           `json:"status"`
	Category    string           `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Attachments json.RawMessage  `json:"attachments" swaggertype:"string"`
	Notes       string           `json:"notes"`
}

func (r updateRequest) input() (service.UpdateInput, error) {
	in := service.UpdateInput{
		Status: r.Status,
		CompleteInput: service.CompleteInput{
			Category: r.Category,
			Amount:   r.Amount,
			Notes:    r.Notes,
		},
	}
	raw := bytes.TrimSpace(r.Attachments)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		names := make([]string, 0)
		if err := json.Unmarshal(raw, &names); err != nil {
			return in, &service.ValidationError{Field: "attachments", Message: "attachments must be a string or a list of strings"}
		}
		in.Attachments = names
	default:
		if err := json.Unmarshal(raw, &in.AttachmentsText); err != nil {
			return in, &service.ValidationError{Field: "attachments", Message: "attachments must be a string or a list of strings"}
		}
	}
	return in, nil
}

// UpdateInvoice applies a lifecycle transition: status=completed writes the annotation,
// status=pending clears it.
//
// @Summary Complete or reset an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body updateRequest true "Transition"
// @Success 200 {object} model.Invoice
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id} [put]
func UpdateInvoice(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}

		var req updateRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		in, err := req.input()
		if err != nil {
			return writeServiceError(c, err)
		}

		inv, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(inv)
	}
}

// DeleteInvoice removes the invoice, its attachment edges and its document.
//
// @Summary Delete an invoice
// @Tags invoices
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id} [delete]
func DeleteInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetInvoiceFile streams the stored document inline.
//
// @Summary Download the invoice document
// @Tags invoices
// @Produce octet-stream
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id}/file [get]
func GetInvoiceFile(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		f, err := svc.OpenFile(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, f.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": f.Invoice.OriginalFilename}))
		if f.Size > 0 {
			return c.SendStream(f.Body, int(f.Size))
		}
		return c.SendStream(f.Body)
	}
}

const (
	defaultURLExpiry = 15 * time.Minute
	maxURLExpiry     = 7 * 24 * time.Hour
)

// GetInvoiceFileURL returns a presigned download URL for the stored document.
//
// @Summary Presigned document URL
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param expiry query int false "Lifetime in seconds" default(900)
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id}/url [get]
func GetInvoiceFileURL(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		expiry := defaultURLExpiry
		if v := c.Query("expiry"); v != "" {
			secs, err := strconv.Atoi(v)
			if err != nil || secs <= 0 || time.Duration(secs)*time.Second > maxURLExpiry {
				return writeFieldError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "expiry must be between 1 second and 7 days", "expiry")
			}
			expiry = time.Duration(secs) * time.Second
		}

		u, err := svc.FileURL(c.UserContext(), id, expiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"url":        u,
			"expires_at": time.Now().Add(expiry).UTC().Format(time.RFC3339),
		})
	}
}
