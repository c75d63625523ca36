package entity

import "time"

// Tipos de pase de salida/entrada.
const (
	GatePassTypeInward        = "inward"
	GatePassTypeOutward       = "outward"
	GatePassTypeReturnable    = "returnable"
	GatePassTypeNonReturnable = "non-returnable"
)

// Estados del pase. Rejected y Completed son terminales.
const (
	GatePassStatusPending   = "pending"
	GatePassStatusApproved  = "approved"
	GatePassStatusRejected  = "rejected"
	GatePassStatusCompleted = "completed"
)

// Motivos de verificación.
const (
	VerifyReasonValid          = "valid"
	VerifyReasonExpired        = "expired"
	VerifyReasonNotYetApproved = "not_yet_approved"
	VerifyReasonInvalid        = "invalid"
)

// GatePass documento que autoriza el paso de material, personas o vehículos
// por la portería dentro de una ventana de validez.
type GatePass struct {
	ID                 string
	Number             string
	Type               string
	PartyName          string
	PartyContact       string
	VehicleNumber      string
	DriverName         string
	DriverContact      string
	Purpose            string
	ValidFrom          time.Time
	ValidTo            time.Time
	ExpectedReturnDate *time.Time
	Status             string
	Notes              string
	CreatedBy          string
	ApprovedBy         string
	ApprovedAt         *time.Time
	RejectionReason    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []GatePassItem
}

// GatePassItem línea del pase. ReturnedQuantity <= Quantity.
type GatePassItem struct {
	ID               string
	GatePassID       string
	ItemID           string
	ItemName         string
	Description      string
	Quantity         int64
	Unit             string
	ReturnedQuantity int64
	CreatedAt        time.Time
}

// Outstanding cantidad pendiente de devolución.
func (i *GatePassItem) Outstanding() int64 {
	return i.Quantity - i.ReturnedQuantity
}

// ValidGatePassType valida el tipo recibido.
func ValidGatePassType(t string) bool {
	switch t {
	case GatePassTypeInward, GatePassTypeOutward, GatePassTypeReturnable, GatePassTypeNonReturnable:
		return true
	}
	return false
}

// CanTransitionGatePass tabla de transiciones legales.
func CanTransitionGatePass(from, to string) bool {
	switch from {
	case GatePassStatusPending:
		return to == GatePassStatusApproved || to == GatePassStatusRejected
	case GatePassStatusApproved:
		return to == GatePassStatusCompleted
	}
	return false
}

// FullyReturned indica que todas las líneas están devueltas (pase sin líneas: false).
func (g *GatePass) FullyReturned() bool {
	if len(g.Items) == 0 {
		return false
	}
	for i := range g.Items {
		if g.Items[i].Outstanding() > 0 {
			return false
		}
	}
	return true
}

// Verification resultado de verificar un pase en portería.
type Verification struct {
	Number   string
	Verified bool
	Reason   string
}

// EvaluateGatePass decide la verificación a partir del estado y la ventana de validez.
// Es pura: base de la verificación en línea y de la verificación offline (QR).
func EvaluateGatePass(number, status string, validFrom, validTo, now time.Time) Verification {
	v := Verification{Number: number}
	if validFrom.IsZero() || validTo.IsZero() || validFrom.After(validTo) {
		v.Reason = VerifyReasonInvalid
		return v
	}
	switch status {
	case GatePassStatusPending:
		v.Reason = VerifyReasonNotYetApproved
	case GatePassStatusApproved:
		switch {
		case now.After(validTo):
			v.Reason = VerifyReasonExpired
		case now.Before(validFrom):
			v.Reason = VerifyReasonInvalid
		default:
			v.Verified = true
			v.Reason = VerifyReasonValid
		}
	default:
		v.Reason = VerifyReasonInvalid
	}
	return v
}

// GatePassStatusChange parámetros de una transición condicional.
type GatePassStatusChange struct {
	From            string
	To              string
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string
	At              time.Time
}
