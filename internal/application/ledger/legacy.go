package ledger

import (
	"context"
	"strings"
	"unicode"

	"github.com/jhoicas/wms-core/internal/domain"
	"github.com/jhoicas/wms-core/internal/domain/access"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/domain/repository"
)

var (
	repairWords = map[string]bool{"repair": true, "repairing": true, "repaired": true, "reparacion": true, "reparación": true}
	otherWords  = map[string]bool{"other": true, "others": true, "misc": true, "miscellaneous": true, "otro": true, "otros": true}
)

// InferLegacyFlags deduce la categoría de registros antiguos a partir de las notas y el nombre
// ("[REPAIR] Drill", "sent for repair", "misc items"). Solo la usa la migración de datos
// heredados; los registros nuevos fijan Flags explícitamente al crearse.
func InferLegacyFlags(notes, itemName string) entity.ItemFlags {
	var f entity.ItemFlags
	for _, text := range []string{notes, itemName} {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, w := range words {
			if repairWords[w] {
				f.IsRepairing = true
			}
			if otherWords[w] {
				f.IsOther = true
			}
		}
	}
	if f.IsRepairing {
		f.IsOther = false
	}
	return f
}

// FlagChange artículo reclasificado por la migración.
type FlagChange struct {
	ItemID string
	Name   string
	Flags  entity.ItemFlags
}

// BackfillLegacyFlags recorre los artículos sin bandera y fija la categoría deducida de su
// descripción y nombre. Con dryRun solo informa. Es idempotente: un artículo ya marcado no
// vuelve a tocarse.
func (uc *UseCase) BackfillLegacyFlags(ctx context.Context, actor entity.Identity, dryRun bool) ([]FlagChange, error) {
	if err := access.Require(actor, access.ActionManageInventory); err != nil {
		return nil, err
	}
	list, err := uc.ListItems(ctx, actor, repository.InventoryItemFilter{Kind: entity.ItemKindNormal})
	if err != nil {
		return nil, err
	}
	var changes []FlagChange
	for _, it := range list {
		flags := InferLegacyFlags(it.Description, it.Name)
		if flags.Kind() == entity.ItemKindNormal {
			continue
		}
		change := FlagChange{ItemID: it.ID, Name: it.Name, Flags: flags}
		if dryRun {
			changes = append(changes, change)
			continue
		}
		applied := false
		err := uc.inTx(ctx, func(ctx context.Context, items repository.InventoryItemRepository, _ repository.TransactionRepository) error {
			applied = false
			cur, err := items.GetByID(ctx, it.ID)
			if err != nil {
				return err
			}
			if cur == nil || !cur.IsNormal() {
				return nil
			}
			if err := items.UpdateFlags(ctx, cur.ID, cur.Version, flags); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			return changes, domain.StorageError(err)
		}
		if applied {
			uc.log.Info().Str("item_id", it.ID).Str("kind", flags.Kind()).Msg("bandera heredada migrada")
			changes = append(changes, change)
		}
	}
	return changes, nil
}
