package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "manager", "wms-core-test", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "manager", role)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := jwt.Generate(secret, "u-1", "staff", "wms-core-test", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse(secret, expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	valid, err := jwt.Generate(secret, "u-1", "staff", "wms-core-test", 5)
	require.NoError(t, err)
	_, _, err = jwt.Parse("otro", valid)
	assert.Error(t, err)

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{UserID: "u-1", Role: "admin"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = jwt.Parse(secret, none)
	assert.Error(t, err)

	_, err = jwt.Generate("", "u-1", "staff", "", 5)
	assert.Error(t, err)
	_, _, err = jwt.Parse("", valid)
	assert.Error(t, err)
}

func TestGatePassSigner_IdaYVuelta(t *testing.T) {
	s := jwt.NewGatePassSigner(secret, "wms-core-test")
	in := jwt.GatePassToken{
		Number:    "GP-2025-0001",
		Status:    "approved",
		ValidFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		IssuedAt:  time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	tok, err := s.Sign(in)
	require.NoError(t, err)

	out, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, in.Number, out.Number)
	assert.Equal(t, in.Status, out.Status)
	assert.True(t, in.ValidFrom.Equal(out.ValidFrom))
	assert.True(t, in.ValidTo.Equal(out.ValidTo))
	assert.True(t, in.IssuedAt.Equal(out.IssuedAt))
}

func TestGatePassSigner_Rechazos(t *testing.T) {
	in := jwt.GatePassToken{Number: "GP-2025-0001", Status: "approved", ValidFrom: time.Now(), ValidTo: time.Now().Add(time.Hour)}
	tok, err := jwt.NewGatePassSigner(secret, "wms-core-test").Sign(in)
	require.NoError(t, err)

	_, err = jwt.NewGatePassSigner(secret, "otro-emisor").Parse(tok)
	assert.Error(t, err)
	_, err = jwt.NewGatePassSigner("otro", "wms-core-test").Parse(tok)
	assert.Error(t, err)

	access, err := jwt.Generate(secret, "u-1", "admin", "wms-core-test", 5)
	require.NoError(t, err)
	_, err = jwt.NewGatePassSigner(secret, "wms-core-test").Parse(access)
	assert.Error(t, err, "un token de acceso no es un pase")

	_, err = jwt.NewGatePassSigner("", "").Sign(in)
	assert.Error(t, err)
}
