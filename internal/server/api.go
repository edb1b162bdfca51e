package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

// ---- Daily level ----

type dailyLevelResp struct {
	DailyID int64        `json:"daily_id"`
	Date    string       `json:"date_of_level"`
	Number  int          `json:"number"`
	Layout  sokoban.Grid `json:"layout"`
}

func (s *Server) handleDailyLevel(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Date parameter is required")
		return
	}

	level, err := s.dailyLevels.GetByDate(r.Context(), date)
	if err != nil {
		s.logger.Error("failed to load daily level", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if level == nil {
		writeError(w, http.StatusNotFound, "No level found for this date")
		return
	}

	number, err := s.dailyLevels.Number(r.Context(), level)
	if err != nil {
		s.logger.Error("failed to number daily level", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, dailyLevelResp{
		DailyID: level.DailyID,
		Date:    level.DateOfLevel,
		Number:  number,
		Layout:  level.Layout,
	})
}

// ---- Attempt ----

type attemptReq struct {
	LevelID json.Number `json:"levelID"`
	Moves   json.Number `json:"moves"`
	TimeMs  json.Number `json:"timeMs"`
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	levelID, errL := req.LevelID.Int64()
	moves, errM := req.Moves.Int64()
	timeMs, errT := req.TimeMs.Int64()
	if errL != nil || errM != nil || errT != nil || levelID <= 0 || moves < 0 || timeMs < 0 {
		writeError(w, http.StatusBadRequest, "Missing or invalid fields: levelID, moves, timeMs must be valid integers")
		return
	}

	_, err := s.attempts.Create(r.Context(), levelID, int(moves), timeMs, clientIP(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No such daily level")
		return
	}
	if err != nil {
		s.logger.Error("failed to insert daily attempt", "level", levelID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// ---- User levels ----

type userLevelResp struct {
	UserLevelID int64        `json:"user_level_id"`
	UserName    string       `json:"user_name"`
	Layout      sokoban.Grid `json:"layout"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

func toUserLevelResp(levels []storage.UserLevel) []userLevelResp {
	out := make([]userLevelResp, 0, len(levels))
	for _, l := range levels {
		out = append(out, userLevelResp{
			UserLevelID: l.UserLevelID,
			UserName:    l.UserName,
			Layout:      l.Layout,
			UploadedAt:  l.UploadedAt,
		})
	}
	return out
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleUserLevels(w http.ResponseWriter, r *http.Request) {
	offset, errO := queryInt(r, "offset", 0)
	limit, errL := queryInt(r, "limit", 10)
	if errO != nil || errL != nil || offset < 0 || limit < 0 {
		writeError(w, http.StatusBadRequest, "Invalid offset or limit")
		return
	}

	levels, err := s.userLevels.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("failed to list user levels", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, toUserLevelResp(levels))
}

func (s *Server) handleUserLevel(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "id", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	level, err := s.userLevels.Get(r.Context(), int64(id))
	if err != nil {
		s.logger.Error("failed to get user level", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var levels []storage.UserLevel
	if level != nil {
		levels = append(levels, *level)
	}
	writeJSON(w, http.StatusOK, toUserLevelResp(levels))
}

// ---- Submit level ----

type submitLevelReq struct {
	UserName string          `json:"user_name"`
	Layout   json.RawMessage `json:"layout"`
}

type submitLevelResp struct {
	Success     bool  `json:"success"`
	UserLevelID int64 `json:"user_level_id"`
}

func (s *Server) handleSubmitLevel(w http.ResponseWriter, r *http.Request) {
	var req submitLevelReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.UserName)
	if name == "" || len(req.Layout) == 0 {
		writeError(w, http.StatusBadRequest, "Missing user_name or layout in request body")
		return
	}

	grid, err := sokoban.ParseGrid(req.Layout)
	if err == nil {
		err = sokoban.ValidateGrid(grid)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{
			Error:    "Invalid layout",
			Problems: sokoban.Problems(err),
		})
		return
	}

	level, err := s.userLevels.Create(r.Context(), name, grid, clientIP(r))
	if err != nil {
		s.logger.Error("failed to insert user level", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.logger.Info("level submitted", "user_level_id", level.UserLevelID, "user_name", name)
	writeJSON(w, http.StatusOK, submitLevelResp{Success: true, UserLevelID: level.UserLevelID})
}
