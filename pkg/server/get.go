package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fabula/pkg/utils"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "Fabula Narrative Engine",
		"status":  "ok",
		"runs":    len(s.Runs.Map()),
	})
}

type runSummary struct {
	RunID        string  `json:"run_id"`
	Title        string  `json:"title"`
	Chapters     int     `json:"chapters"`
	SuccessScore float64 `json:"success_score"`
}

func (s *Server) handleGetRuns(c echo.Context) error {
	runs := s.Runs.Map()
	out := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, runSummary{
			RunID:        r.RunID,
			Title:        r.Title,
			Chapters:     len(r.Manuscript),
			SuccessScore: r.Metrics.SuccessScore,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetRun(c echo.Context) error {
	r, ok := s.Runs.Load(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("unknown run id"))
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleGetRunChart(c echo.Context) error {
	b, err := s.charts.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, utils.ErrJSON(err.Error()))
	}
	return c.Blob(http.StatusOK, "image/webp", b)
}

func (s *Server) handleDeleteRun(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.Runs.Load(id); !ok {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("unknown run id"))
	}
	s.Runs.Delete(id)
	s.charts.Drop(id)
	return c.NoContent(http.StatusNoContent)
}
