package server

import (
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"

	"fabula/pkg/metrics"
	"fabula/pkg/semantic"
	"fabula/pkg/utils"
	"fabula/pkg/valence"
)

type analyzeReq struct {
	Manuscript map[string]string `json:"manuscript"`
}

type chapterProgress struct {
	Chapter string  `json:"chapter"`
	Valence float64 `json:"valence"`
}

type analyzeResp struct {
	Metrics      metrics.Metrics `json:"narrative_metrics"`
	SuccessScore float64         `json:"success_score"`
}

// POST /api/analyze
func (s *Server) handlePostAnalyze(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if len(req.Manuscript) == 0 {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("empty manuscript"))
	}

	keys := utils.SortedChapterKeys(req.Manuscript)

	w := utils.NewSSEWriter(c)
	defer w.Close()

	// Positional scaling keys off the chapter number itself, matching the
	// pipeline's own verification pass.
	tracker := valence.NewTracker()
	for _, key := range keys {
		if cancelled(c) {
			return nil
		}
		v := tracker.Score(req.Manuscript[key], utils.ChapterNumber(key))
		if err := w.Event("chapter", chapterProgress{Chapter: key, Valence: v}); err != nil {
			c.Logger().Errorf("SSE write error: %v", err)
			return nil
		}
	}

	distance := semantic.ManuscriptDistance(req.Manuscript)
	m := metrics.Compute(tracker.History(), distance, len(keys))

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	suggestion := tracker.SuggestNextReversal(valence.Swings(tracker.History()), rng)
	if err := w.Event("suggestion", suggestion); err != nil {
		c.Logger().Errorf("SSE write error: %v", err)
		return nil
	}

	return w.Event("done", analyzeResp{Metrics: m, SuccessScore: m.SuccessScore})
}
