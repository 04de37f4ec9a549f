package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamUint(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := paramUint(c, "id")
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, bad := range []string{"0", "-1", "abc", "4300000000000"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+bad, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "param %q", bad)
	}
}

func TestPagination(t *testing.T) {
	app := fiber.New()
	var offset, limit int
	app.Get("/list", func(c *fiber.Ctx) error {
		offset, limit = pagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"", 0, 50},
		{"?offset=20&limit=10", 20, 10},
		{"?offset=-5", 0, 50},
		{"?limit=0", 0, 50},
		{"?limit=500", 0, 50},
		{"?limit=100", 0, 100},
	}
	for _, tc := range cases {
		_, err := app.Test(httptest.NewRequest("GET", "/list"+tc.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.wantOffset, offset, "offset for %q", tc.query)
		assert.Equal(t, tc.wantLimit, limit, "limit for %q", tc.query)
	}
}

func TestDateRangeQuery(t *testing.T) {
	app := fiber.New()
	var from, to time.Time
	var ok bool
	app.Get("/range", func(c *fiber.Ctx) error {
		from, to, ok = dateRangeQuery(c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/range?from=2026-03-01&to=2026-03-05", nil))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	// to is an exclusive bound covering the whole last day
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), to)

	for _, q := range []string{"", "?from=2026-03-01", "?to=2026-03-05", "?from=bad&to=2026-03-05"} {
		_, err := app.Test(httptest.NewRequest("GET", "/range"+q, nil))
		require.NoError(t, err)
		assert.False(t, ok, "query %q", q)
	}
}
