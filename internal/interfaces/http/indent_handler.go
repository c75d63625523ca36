package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-core/internal/application/dto"
	"github.com/jhoicas/wms-core/internal/application/indent"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// IndentHandler maneja solicitudes internas de compra (protegido).
type IndentHandler struct {
	uc *indent.UseCase
}

// NewIndentHandler construye el handler.
func NewIndentHandler(uc *indent.UseCase) *IndentHandler {
	return &IndentHandler{uc: uc}
}

// Create POST /api/indents
// admin y manager crean la solicitud ya aprobada.
func (h *IndentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIndentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	required, err := time.Parse(dto.DateLayout, in.RequiredDate)
	if err != nil {
		return badRequest(c, "VALIDATION", "required_date debe ser YYYY-MM-DD")
	}
	items := make([]indent.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, indent.ItemInput{
			ItemID:         it.ItemID,
			ItemName:       it.ItemName,
			Description:    it.Description,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			EstimatedPrice: it.EstimatedPrice,
		})
	}
	out, err := h.uc.Create(c.UserContext(), GetIdentity(c), indent.CreateInput{
		Title:        in.Title,
		Department:   in.Department,
		Priority:     in.Priority,
		RequiredDate: required,
		Notes:        in.Notes,
		AssignedTo:   in.AssignedTo,
		Items:        items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(indentResult(out))
}

// Get GET /api/indents/:id
func (h *IndentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.IndentFromEntity(out))
}

// List GET /api/indents?status=&priority=&department=&search=&from=&to=
// staff solo recibe sus propias solicitudes.
func (h *IndentHandler) List(c *fiber.Ctx) error {
	page, ok, err := parsePage(c)
	if !ok {
		return err
	}
	from, to, ok, err := queryRange(c)
	if !ok {
		return err
	}
	list, total, err := h.uc.List(c.UserContext(), GetIdentity(c), repository.IndentFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Department: c.Query("department"),
		SearchTerm: c.Query("search"),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.IndentResponse, 0, len(list))
	for _, in := range list {
		out = append(out, dto.IndentFromEntity(in))
	}
	return c.JSON(dto.IndentListResponse{
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		Indents: out,
	})
}

// Approve POST /api/indents/:id/approve
func (h *IndentHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(indentResult(out))
}

// Reject POST /api/indents/:id/reject
func (h *IndentHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectIndentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reject(c.UserContext(), GetIdentity(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(indentResult(out))
}

// Complete POST /api/indents/:id/complete
func (h *IndentHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(indentResult(out))
}

// Delete DELETE /api/indents/:id
func (h *IndentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func indentResult(res *indent.Result) *dto.IndentResponse {
	out := dto.IndentFromEntity(res.Indent)
	out.Warnings = dto.Warnings(res.Warnings)
	return out
}
