package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-core/internal/application/dto"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

// TransactionHandler maneja el libro de transacciones (protegido).
type TransactionHandler struct {
	uc *ledger.UseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *ledger.UseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Record POST /api/transactions
// La respuesta es 201 aunque haya advertencias (p. ej. desviación de stock truncada a 0).
func (h *TransactionHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordTransactionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	key := in.IdempotencyKey
	if key == "" {
		key = c.Get("Idempotency-Key")
	}
	res, err := h.uc.RecordTransaction(c.UserContext(), GetIdentity(c), ledger.RecordInput{
		Type:               in.Type,
		ItemID:             in.ItemID,
		Quantity:           in.Quantity,
		UnitPrice:          in.UnitPrice,
		ReferenceType:      in.ReferenceType,
		ReferenceID:        in.ReferenceID,
		FromLocation:       in.FromLocation,
		ToLocation:         in.ToLocation,
		PartyName:          in.PartyName,
		InvoiceNumber:      in.InvoiceNumber,
		Notes:              in.Notes,
		DisplayName:        in.DisplayName,
		Flags:              entity.ItemFlags{IsRepairing: in.IsRepairing, IsOther: in.IsOther},
		ExpectedReturnDate: in.ExpectedReturnDate,
		IdempotencyKey:     key,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordTransactionResponse{
		Transaction: dto.TransactionFromEntity(res.Transaction),
		NewQuantity: res.NewQuantity,
		Warnings:    dto.Warnings(res.Warnings),
	})
}

// List GET /api/transactions?type=&item_id=&reference_type=&search=&from=&to=
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page, ok, err := parsePage(c)
	if !ok {
		return err
	}
	from, to, ok, err := queryRange(c)
	if !ok {
		return err
	}
	list, total, err := h.uc.ListTransactions(c.UserContext(), GetIdentity(c), repository.TransactionFilter{
		Type:          c.Query("type"),
		ItemID:        c.Query("item_id"),
		ReferenceType: c.Query("reference_type"),
		SearchTerm:    c.Query("search"),
		From:          from,
		To:            to,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TransactionFromEntity(t))
	}
	return c.JSON(dto.TransactionListResponse{
		Page:         dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		Transactions: out,
	})
}

// Summary GET /api/transactions/summary?from=&to=
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	from, to, ok, err := queryRange(c)
	if !ok {
		return err
	}
	sum, err := h.uc.Summary(c.UserContext(), GetIdentity(c), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SummaryFromEntity(sum))
}

// Delete DELETE /api/transactions/:id (solo admin; no revierte stock).
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteTransaction(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
