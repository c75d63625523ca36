package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-core/internal/application/dto"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// InventoryHandler maneja artículos, estadísticas y el ciclo de reparación (protegido).
type InventoryHandler struct {
	uc *ledger.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateItem POST /api/inventory/items
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	item, err := h.uc.CreateItem(c.UserContext(), GetIdentity(c), ledger.CreateItemInput{
		ItemCode:    in.ItemCode,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		MaxQuantity: in.MaxQuantity,
		UnitPrice:   in.UnitPrice,
		Location:    in.Location,
		Supplier:    in.Supplier,
		Status:      in.Status,
		Flags:       entity.ItemFlags{IsRepairing: in.IsRepairing, IsOther: in.IsOther},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ItemFromEntity(item))
}

// GetItem GET /api/inventory/items/:id
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ItemFromEntity(item))
}

// ListItems GET /api/inventory/items?category=&status=&kind=&search=&min_quantity=&max_quantity=
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	page, ok, err := parsePage(c)
	if !ok {
		return err
	}
	minQty, perr := queryInt64(c, "min_quantity")
	if perr != nil {
		return badRequest(c, "INVALID_QUERY", "min_quantity debe ser entero")
	}
	maxQty, perr := queryInt64(c, "max_quantity")
	if perr != nil {
		return badRequest(c, "INVALID_QUERY", "max_quantity debe ser entero")
	}
	list, err := h.uc.ListItems(c.UserContext(), GetIdentity(c), repository.InventoryItemFilter{
		Category:    c.Query("category"),
		Status:      c.Query("status"),
		Kind:        c.Query("kind"),
		SearchTerm:  c.Query("search"),
		MinQuantity: minQty,
		MaxQuantity: maxQty,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
		"items": dto.ItemsFromEntities(list),
	})
}

// Stats GET /api/inventory/stats
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.CurrentStats(c.UserContext(), GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StatsFromEntity(stats))
}

// SendToRepair POST /api/inventory/items/:id/repair
func (h *InventoryHandler) SendToRepair(c *fiber.Ctx) error {
	var in dto.SendToRepairRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.SendToRepair(c.UserContext(), GetIdentity(c), c.Params("id"), in.Quantity, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RepairResponse{
		Item:        dto.ItemFromEntity(res.Item),
		RepairItem:  dto.ItemFromEntity(res.RepairItem),
		Transaction: dto.TransactionFromEntity(res.Transaction),
		Warnings:    dto.Warnings(res.Warnings),
	})
}

// Reconcile POST /api/inventory/items/:id/reconcile
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.uc.ReconcileRepairItem(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{Outcome: res.Outcome, Item: dto.ItemFromEntity(res.Item)})
}
