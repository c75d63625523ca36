package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-core/internal/application/dto"
	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// GatePassHandler maneja pases de salida/entrada y su verificación en portería (protegido).
type GatePassHandler struct {
	uc    *gatepass.UseCase
	clock func() time.Time
}

// NewGatePassHandler construye el handler. clock nil usa time.Now.
func NewGatePassHandler(uc *gatepass.UseCase, clock func() time.Time) *GatePassHandler {
	if clock == nil {
		clock = time.Now
	}
	return &GatePassHandler{uc: uc, clock: clock}
}

// Create POST /api/gate-passes
func (h *GatePassHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateGatePassRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	items := make([]gatepass.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, gatepass.ItemInput{
			ItemID:      it.ItemID,
			ItemName:    it.ItemName,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		})
	}
	p, err := h.uc.Create(c.UserContext(), GetIdentity(c), gatepass.CreateInput{
		Type:               in.Type,
		PartyName:          in.PartyName,
		PartyContact:       in.PartyContact,
		VehicleNumber:      in.VehicleNumber,
		DriverName:         in.DriverName,
		DriverContact:      in.DriverContact,
		Purpose:            in.Purpose,
		ValidFrom:          in.ValidFrom,
		ValidTo:            in.ValidTo,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Notes:              in.Notes,
		Items:              items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.GatePassFromEntity(p))
}

// Get GET /api/gate-passes/:id
func (h *GatePassHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.GatePassFromEntity(p))
}

// GetByNumber GET /api/gate-passes/number/:number
func (h *GatePassHandler) GetByNumber(c *fiber.Ctx) error {
	p, err := h.uc.GetByNumber(c.UserContext(), GetIdentity(c), c.Params("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.GatePassFromEntity(p))
}

// List GET /api/gate-passes?type=&status=&search=&from=&to=
func (h *GatePassHandler) List(c *fiber.Ctx) error {
	page, ok, err := parsePage(c)
	if !ok {
		return err
	}
	from, to, ok, err := queryRange(c)
	if !ok {
		return err
	}
	list, total, err := h.uc.List(c.UserContext(), GetIdentity(c), repository.GatePassFilter{
		Type:       c.Query("type"),
		Status:     c.Query("status"),
		SearchTerm: c.Query("search"),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.GatePassResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.GatePassFromEntity(p))
	}
	return c.JSON(dto.GatePassListResponse{
		Page:       dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		GatePasses: out,
	})
}

// SetStatus PATCH /api/gate-passes/:id/status (approved | rejected)
func (h *GatePassHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.SetGatePassStatusRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.SetStatus(c.UserContext(), GetIdentity(c), c.Params("id"), in.Status, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transitionResponse(res))
}

// Complete POST /api/gate-passes/:id/complete
func (h *GatePassHandler) Complete(c *fiber.Ctx) error {
	res, err := h.uc.Complete(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transitionResponse(res))
}

// RecordReturn POST /api/gate-passes/items/:itemId/return
func (h *GatePassHandler) RecordReturn(c *fiber.Ctx) error {
	var in dto.RecordReturnRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.RecordReturn(c.UserContext(), GetIdentity(c), c.Params("itemId"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReturnResponse{
		Item:      dto.GatePassItemFromEntity(res.Item),
		Pass:      dto.GatePassFromEntity(res.Pass),
		Completed: res.Completed,
		Warnings:  dto.Warnings(res.Warnings),
	})
}

// Verify GET /api/gate-passes/verify/:number
// Un pase vencido o sin aprobar responde 200 con verified=false y el motivo.
func (h *GatePassHandler) Verify(c *fiber.Ctx) error {
	v, err := h.uc.Verify(c.UserContext(), GetIdentity(c), c.Params("number"), h.clock())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.VerificationFromEntity(v))
}

// IssueToken POST /api/gate-passes/:id/token
func (h *GatePassHandler) IssueToken(c *fiber.Ctx) error {
	tok, err := h.uc.IssueVerificationToken(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.VerificationTokenResponse{Token: tok})
}

// VerifyToken POST /api/gate-passes/verify-token
func (h *GatePassHandler) VerifyToken(c *fiber.Ctx) error {
	var in dto.VerifyOfflineRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	v, err := h.uc.VerifyOffline(in.Token, h.clock())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.VerificationFromEntity(v))
}

func transitionResponse(res *gatepass.TransitionResult) *dto.GatePassResponse {
	out := dto.GatePassFromEntity(res.Pass)
	out.Warnings = dto.Warnings(res.Warnings)
	return out
}
