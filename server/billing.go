package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type profileResponse struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name,omitempty"`
	IsPro       bool       `json:"is_pro"`
	ProSince    *time.Time `json:"pro_since,omitempty"`
}

// handleProfile returns the user's profile, defaulting to a free
// profile when no row exists yet.
func (s *Server) handleProfile(c echo.Context) error {
	userID := c.Get("user_id").(string)

	p := profileResponse{UserID: userID}
	var proSince sql.NullTime
	err := s.db.QueryRowContext(c.Request().Context(), `
		SELECT display_name, is_pro, pro_since FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.DisplayName, &p.IsPro, &proSince)
	if err != nil && err != sql.ErrNoRows {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if proSince.Valid {
		t := proSince.Time
		p.ProSince = &t
	}

	return c.JSON(http.StatusOK, p)
}

// handleCheckout hands the client a checkout URL for the upgrade flow.
func (s *Server) handleCheckout(c echo.Context) error {
	if s.checkoutURL == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "checkout not configured"})
	}
	return c.JSON(http.StatusOK, map[string]string{"url": s.checkoutURL})
}

// handleUpgrade marks the user as pro and notifies their other devices.
func (s *Server) handleUpgrade(c echo.Context) error {
	userID := c.Get("user_id").(string)
	now := time.Now().UTC()

	if _, err := s.db.ExecContext(c.Request().Context(), `
		INSERT INTO profiles (user_id, is_pro, pro_since)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (user_id) DO UPDATE SET is_pro = TRUE, pro_since = COALESCE(profiles.pro_since, $2)`,
		userID, now,
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	s.broadcastRow(userID, "profiles", false, profileResponse{UserID: userID, IsPro: true, ProSince: &now})

	return c.JSON(http.StatusOK, map[string]bool{"is_pro": true})
}
