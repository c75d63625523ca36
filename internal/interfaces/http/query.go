package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-core/internal/application/dto"
)

// queryTime acepta RFC3339 o fecha (2006-01-02). Vacío devuelve nil.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryRange lee from/to. Si falla escribe la respuesta 400 y devuelve ok=false.
func queryRange(c *fiber.Ctx) (from, to *time.Time, ok bool, err error) {
	from, perr := queryTime(c, "from")
	if perr != nil {
		return nil, nil, false, badRequest(c, "INVALID_QUERY", "from debe ser RFC3339 o YYYY-MM-DD")
	}
	to, perr = queryTime(c, "to")
	if perr != nil {
		return nil, nil, false, badRequest(c, "INVALID_QUERY", "to debe ser RFC3339 o YYYY-MM-DD")
	}
	return from, to, true, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
