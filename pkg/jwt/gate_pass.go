package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GatePassClaims contenido del QR de un pase. No lleva exp: la ventana de validez la evalúa
// quien verifica, para poder responder "expired" en lugar de un token inválido.
type GatePassClaims struct {
	jwt.RegisteredClaims
	Number    string `json:"num"`
	Status    string `json:"st"`
	ValidFrom int64  `json:"vf"`
	ValidTo   int64  `json:"vt"`
}

// GatePassToken datos verificados de un token de pase.
type GatePassToken struct {
	Number    string
	Status    string
	ValidFrom time.Time
	ValidTo   time.Time
	IssuedAt  time.Time
}

// GatePassSigner firma y valida tokens de verificación offline (HS256).
type GatePassSigner struct {
	secret string
	issuer string
}

// NewGatePassSigner construye el firmador.
func NewGatePassSigner(secret, issuer string) *GatePassSigner {
	return &GatePassSigner{secret: secret, issuer: issuer}
}

// Sign firma el estado del pase en el instante de emisión.
func (s *GatePassSigner) Sign(t GatePassToken) (string, error) {
	if s.secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	issued := t.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	claims := GatePassClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  t.Number,
			IssuedAt: jwt.NewNumericDate(issued),
		},
		Number:    t.Number,
		Status:    t.Status,
		ValidFrom: t.ValidFrom.Unix(),
		ValidTo:   t.ValidTo.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// Parse valida firma y emisor y devuelve el contenido.
func (s *GatePassSigner) Parse(tokenString string) (GatePassToken, error) {
	if s.secret == "" {
		return GatePassToken{}, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &GatePassClaims{}, hmacKey(s.secret), opts...)
	if err != nil {
		return GatePassToken{}, err
	}
	claims, ok := token.Claims.(*GatePassClaims)
	if !ok || !token.Valid || claims.Number == "" {
		return GatePassToken{}, fmt.Errorf("claims inválidos")
	}
	out := GatePassToken{
		Number:    claims.Number,
		Status:    claims.Status,
		ValidFrom: time.Unix(claims.ValidFrom, 0).UTC(),
		ValidTo:   time.Unix(claims.ValidTo, 0).UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
