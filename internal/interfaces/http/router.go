package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/application/indent"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// Pinger comprueba el almacenamiento para /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	LedgerUC    *ledger.UseCase
	GatePassUC  *gatepass.UseCase
	IndentUC    *indent.UseCase
	JWTSecret   string
	Storage     Pinger              // nil: /health no consulta almacenamiento
	Metrics     prometheus.Gatherer // nil: sin /metrics
	Clock       func() time.Time    // nil: time.Now
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.ServiceName, deps.Storage))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario y libro
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inv := protected.Group("/inventory")
	inv.Get("/stats", inventoryHandler.Stats)
	inv.Post("/items", inventoryHandler.CreateItem)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Get("/items/:id", inventoryHandler.GetItem)
	inv.Post("/items/:id/repair", inventoryHandler.SendToRepair)
	inv.Post("/items/:id/reconcile", RequireRole(entity.RoleAdmin, entity.RoleManager), inventoryHandler.Reconcile)

	txHandler := NewTransactionHandler(deps.LedgerUC)
	txs := protected.Group("/transactions")
	txs.Post("/", txHandler.Record)
	txs.Get("/", txHandler.List)
	txs.Get("/summary", txHandler.Summary)
	txs.Delete("/:id", RequireRole(entity.RoleAdmin), txHandler.Delete)

	// Pases de portería
	gpHandler := NewGatePassHandler(deps.GatePassUC, deps.Clock)
	gp := protected.Group("/gate-passes")
	gp.Post("/", gpHandler.Create)
	gp.Get("/", gpHandler.List)
	gp.Get("/verify/:number", gpHandler.Verify)
	gp.Post("/verify-token", gpHandler.VerifyToken)
	gp.Get("/number/:number", gpHandler.GetByNumber)
	gp.Post("/items/:itemId/return", gpHandler.RecordReturn)
	gp.Get("/:id", gpHandler.Get)
	gp.Patch("/:id/status", RequireRole(entity.RoleAdmin, entity.RoleManager), gpHandler.SetStatus)
	gp.Post("/:id/complete", gpHandler.Complete)
	gp.Post("/:id/token", gpHandler.IssueToken)

	// Solicitudes de compra
	indentHandler := NewIndentHandler(deps.IndentUC)
	ind := protected.Group("/indents")
	ind.Post("/", indentHandler.Create)
	ind.Get("/", indentHandler.List)
	ind.Get("/:id", indentHandler.Get)
	ind.Post("/:id/approve", RequireRole(entity.RoleAdmin, entity.RoleManager), indentHandler.Approve)
	ind.Post("/:id/reject", RequireRole(entity.RoleAdmin, entity.RoleManager), indentHandler.Reject)
	ind.Post("/:id/complete", indentHandler.Complete)
	ind.Delete("/:id", RequireRole(entity.RoleAdmin), indentHandler.Delete)
}

func healthHandler(service string, storage Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if storage != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": service})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	}
}
