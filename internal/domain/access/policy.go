// Package access concentra la verificación de capacidades por rol.
// Los casos de uso la consultan antes de tocar datos: ocultar un botón en la UI
// no es autorización.
package access

import (
	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/entity"
)

// Action capacidad solicitada por el actor.
type Action string

const (
	ActionReadInventory     Action = "inventory:read"
	ActionManageInventory   Action = "inventory:manage"
	ActionRecordTransaction Action = "transaction:record"
	ActionDeleteTransaction Action = "transaction:delete"
	ActionReconcileRepair   Action = "inventory:reconcile"
	ActionCreateGatePass    Action = "gatepass:create"
	ActionDecideGatePass    Action = "gatepass:decide"
	ActionReturnGatePass    Action = "gatepass:return"
	ActionReadGatePass      Action = "gatepass:read"
	ActionCreateIndent      Action = "indent:create"
	ActionDecideIndent      Action = "indent:decide"
	ActionDeleteIndent      Action = "indent:delete"
	ActionReadAllIndents    Action = "indent:read_all"
	ActionReadOwnIndents    Action = "indent:read_own"
)

var grants = map[string]map[Action]bool{
	entity.RoleAdmin: {
		ActionReadInventory: true, ActionManageInventory: true, ActionRecordTransaction: true,
		ActionDeleteTransaction: true, ActionReconcileRepair: true,
		ActionCreateGatePass: true, ActionDecideGatePass: true, ActionReturnGatePass: true, ActionReadGatePass: true,
		ActionCreateIndent: true, ActionDecideIndent: true, ActionDeleteIndent: true,
		ActionReadAllIndents: true, ActionReadOwnIndents: true,
	},
	entity.RoleManager: {
		ActionReadInventory: true, ActionManageInventory: true, ActionRecordTransaction: true,
		ActionReconcileRepair: true,
		ActionCreateGatePass: true, ActionDecideGatePass: true, ActionReturnGatePass: true, ActionReadGatePass: true,
		ActionCreateIndent: true, ActionDecideIndent: true,
		ActionReadAllIndents: true, ActionReadOwnIndents: true,
	},
	entity.RoleStaff: {
		ActionReadInventory: true, ActionRecordTransaction: true,
		ActionCreateGatePass: true, ActionReturnGatePass: true, ActionReadGatePass: true,
		ActionCreateIndent: true, ActionReadOwnIndents: true,
	},
	entity.RoleViewer: {
		ActionReadInventory: true, ActionReadGatePass: true,
		ActionReadAllIndents: true, ActionReadOwnIndents: true,
	},
}

// Can indica si el rol tiene la capacidad.
func Can(role string, action Action) bool {
	return grants[role][action]
}

// Require devuelve domain.ErrForbidden si el actor no tiene la capacidad.
func Require(actor entity.Identity, action Action) error {
	if actor.ID == "" || !entity.ValidRole(actor.Role) {
		return domain.ErrUnauthorized
	}
	if !Can(actor.Role, action) {
		return domain.ErrForbidden
	}
	return nil
}

// IndentScope devuelve el filtro de solicitante que debe imponerse en la consulta:
// vacío si el actor ve todas las solicitudes, su propio ID si solo ve las suyas.
func IndentScope(actor entity.Identity) (requestedBy string, err error) {
	if err := Require(actor, ActionReadOwnIndents); err != nil {
		return "", err
	}
	if Can(actor.Role, ActionReadAllIndents) {
		return "", nil
	}
	return actor.ID, nil
}
