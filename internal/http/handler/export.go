package handler

import (
	"mime"

	"github.com/gofiber/fiber/v2"

	"reimburse/internal/service"
)

// ExportInvoices downloads the report of all completed invoices. format defaults to csv.
//
// @Summary Export completed invoices
// @Tags export
// @Produce text/csv
// @Param format query string false "Report format" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Router /api/invoices/export [get]
func ExportInvoices(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext(), c.Query("format", "csv"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
		return c.Status(fiber.StatusOK).Send(res.Body)
	}
}

// InvoiceSummary totals completed invoices by category.
//
// @Summary Category subtotals of completed invoices
// @Tags export
// @Produce json
// @Success 200 {object} service.Summary
// @Router /api/invoices/summary [get]
func InvoiceSummary(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sum)
	}
}
