package entity

import (
	"fmt"
	"strconv"
)

// Ámbitos de numeración de documentos.
const (
	SequenceScopeGatePass    = "GP"
	SequenceScopeIndent      = "IND"
	SequenceScopeTransaction = "TRX"
)

// Anchos de relleno por ámbito (GP-2025-0007, IND-2025-003, TRX-2025-00012).
const (
	GatePassNumberPad    = 4
	IndentNumberPad      = 3
	TransactionNumberPad = 5
)

// SequenceKey identifica un contador independiente (ámbito + periodo).
type SequenceKey struct {
	Scope  string
	Period string
}

// NewYearKey construye la clave con el año como periodo.
func NewYearKey(scope string, year int) SequenceKey {
	return SequenceKey{Scope: scope, Period: strconv.Itoa(year)}
}

// SequenceCounter último valor entregado por un contador.
type SequenceCounter struct {
	Key   SequenceKey
	Value int64
}

func (k SequenceKey) String() string {
	return k.Scope + ":" + k.Period
}

// FormatDocumentNumber compone el número visible del documento. Función pura.
func FormatDocumentNumber(scope, period string, n int64, pad int) string {
	return fmt.Sprintf("%s-%s-%0*d", scope, period, pad, n)
}
