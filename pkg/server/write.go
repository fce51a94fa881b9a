package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"fabula/pkg/engine"
	"fabula/pkg/utils"
)

// POST /api/write
func (s *Server) handlePostWrite(c echo.Context) error {
	var concept engine.Concept
	if err := c.Bind(&concept); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if strings.TrimSpace(concept.Theme) == "" {
		concept = engine.DefaultConcept()
	}

	w := utils.NewSSEWriter(c)
	defer w.Close()

	ctx := c.Request().Context()
	resCh, errCh, err := s.Queue.Add(ctx, concept)
	if err != nil {
		_ = w.Event("error", utils.ErrJSON(err.Error()))
		return nil
	}
	_ = w.Event("queued", map[string]string{"theme": concept.Theme})

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		c.Logger().Errorf("generation run failed: %v", err)
		_ = w.Event("error", utils.ErrJSON(err.Error()))
		return nil
	case result := <-resCh:
		s.Runs.Store(result.RunID, result)
		return w.Event("done", result)
	}
}

func cancelled(c echo.Context) bool {
	select {
	case <-c.Request().Context().Done():
		return true
	default:
		return false
	}
}
