package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fabula/pkg/diff"
	"fabula/pkg/schema"
	"fabula/pkg/utils"
)

type diffReq struct {
	OldManuscript map[string]string  `json:"old_manuscript"`
	NewManuscript map[string]string  `json:"new_manuscript"`
	OldCharacters []schema.Character `json:"old_characters"`
	NewCharacters []schema.Character `json:"new_characters"`
}

// POST /api/diff
func (s *Server) handlePostDiff(c echo.Context) error {
	var req diffReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if len(req.OldManuscript) == 0 && len(req.NewManuscript) == 0 &&
		len(req.OldCharacters) == 0 && len(req.NewCharacters) == 0 {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("nothing to compare"))
	}

	d := diff.Revisions(req.OldManuscript, req.NewManuscript, req.OldCharacters, req.NewCharacters)
	return c.JSON(http.StatusOK, d)
}
