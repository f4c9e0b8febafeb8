package handler

import (
	"github.com/gofiber/fiber/v2"

	"reimburse/internal/service"
)

type addAttachmentRequest struct {
	AttachmentID string `json:"attachment_id"`
}

// ListAttachments lists the invoices filed as attachments of :id, in insertion order.
//
// @Summary List attachments of an invoice
// @Tags attachments
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {array} model.Invoice
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id}/attachments [get]
func ListAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		items, err := svc.ListFor(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// AddAttachment files another invoice as an attachment of :id. Re-adding is a no-op.
//
// @Summary Add an attachment edge
// @Tags attachments
// @Accept json
// @Param id path string true "Invoice ID"
// @Param body body addAttachmentRequest true "Attachment"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/invoices/{id}/attachments [post]
func AddAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		var req addAttachmentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		attachmentID, ok := canonicalID(req.AttachmentID)
		if !ok {
			return writeFieldError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid attachment id format", "attachment_id")
		}
		if err := svc.Add(c.UserContext(), id, attachmentID); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RemoveAttachment deletes the edge. Removing a missing edge is a no-op.
//
// @Summary Remove an attachment edge
// @Tags attachments
// @Param id path string true "Invoice ID"
// @Param attachmentId path string true "Attachment invoice ID"
// @Success 204
// @Router /api/invoices/{id}/attachments/{attachmentId} [delete]
func RemoveAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeInvalidID(c)
		}
		attachmentID, ok := pathID(c, "attachmentId")
		if !ok {
			return writeInvalidID(c)
		}
		if err := svc.Remove(c.UserContext(), id, attachmentID); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListAllAttachmentIDs returns every invoice id that is an attachment of some invoice.
//
// @Summary List attachment ids
// @Tags attachments
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/invoices/attachments/all [get]
func ListAllAttachmentIDs(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := svc.AllAttachmentIDs(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"attachment_ids": ids})
	}
}
