package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// GetRelay retrieves the ledger record of a relay.
// GET /v1/relays/:relay_id
func (h *Handler) GetRelay(c echo.Context) error {
	relayID := c.Param("relay_id")

	relay, err := h.service.GetRelay(c.Request().Context(), relayID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if relay == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "relay not found"})
	}

	return c.JSON(http.StatusOK, relay)
}

// GetRelayEvents retrieves the ledger events of a relay.
// GET /v1/relays/:relay_id/events?after_ts=&types=a,b&limit=
func (h *Handler) GetRelayEvents(c echo.Context) error {
	relayID := c.Param("relay_id")
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}
	var types []string
	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	events, err := h.service.GetRelayEvents(c.Request().Context(), relayID, afterTs, types, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
