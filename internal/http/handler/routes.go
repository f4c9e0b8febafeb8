package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reimburse/internal/service"
)

// Services groups the application services exposed over HTTP.
type Services struct {
	Invoices    service.InvoiceService
	Lifecycle   service.LifecycleService
	Attachments service.AttachmentService
	Export      service.ExportService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/invoices")

	api.Get("/", ListInvoices(svc.Invoices))
	api.Post("/", UploadInvoice(svc.Invoices))
	api.Post("/batch", BulkUploadInvoices(svc.Invoices))

	// Static segments must be registered before /:id.
	api.Get("/export", ExportInvoices(svc.Export))
	api.Get("/summary", InvoiceSummary(svc.Export))
	api.Get("/attachments/all", ListAllAttachmentIDs(svc.Attachments))

	api.Get("/:id", GetInvoice(svc.Invoices))
	api.Put("/:id", UpdateInvoice(svc.Lifecycle))
	api.Delete("/:id", DeleteInvoice(svc.Invoices))
	api.Get("/:id/file", GetInvoiceFile(svc.Invoices))
	api.Get("/:id/url", GetInvoiceFileURL(svc.Invoices))

	api.Get("/:id/attachments", ListAttachments(svc.Attachments))
	api.Post("/:id/attachments", AddAttachment(svc.Attachments))
	api.Delete("/:id/attachments/:attachmentId", RemoveAttachment(svc.Attachments))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
//
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// pathID returns the named path parameter when it is a UUID.
// pathID returns the path parameter as a canonical lowercase hyphenated UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	return canonicalID(c.Params(name))
}

func canonicalID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func writeInvalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}
