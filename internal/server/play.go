package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/recorder"
	"github.com/SeamusWaldron/sokodle/internal/session"
)

type createSessionReq struct {
	DailyID     int64           `json:"daily_id,omitempty"`
	UserLevelID int64           `json:"user_level_id,omitempty"`
	Layout      json.RawMessage `json:"layout,omitempty"`
}

type moveReq struct {
	Direction string            `json:"direction,omitempty"`
	Target    *sokoban.Position `json:"target,omitempty"`
}

type scoreResp struct {
	Moves     int    `json:"moves"`
	TimeMs    int64  `json:"time_ms"`
	Time      string `json:"time"`
	ShareText string `json:"share_text"`
}

type sessionResp struct {
	SessionID string             `json:"session_id"`
	Level     session.LevelRef   `json:"level"`
	Phase     sokoban.Phase      `json:"phase"`
	Player    sokoban.Position   `json:"player"`
	Boxes     []sokoban.Position `json:"boxes"`
	Walls     []sokoban.Position `json:"walls"`
	Goals     []sokoban.Position `json:"goals"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	Step      int                `json:"step"`
	Moves     int                `json:"moves"`
	Covered   int                `json:"goals_covered"`
	Accepted  *bool              `json:"accepted,omitempty"`
	Recorded  bool               `json:"recorded"`
	Score     *scoreResp         `json:"score,omitempty"`
	Board     string             `json:"board"`
}

func (s *Server) view(ctx context.Context, sess *recorder.Session, accepted *bool) sessionResp {
	g := sess.Game()
	covered, _ := g.GoalsCovered()
	resp := sessionResp{
		SessionID: sess.ID(),
		Level:     sess.Level(),
		Phase:     g.Phase(),
		Player:    g.Player(),
		Boxes:     g.Boxes(),
		Walls:     g.Scene().Walls(),
		Goals:     g.Scene().Goals(),
		Rows:      g.Scene().Rows(),
		Cols:      g.Scene().Cols(),
		Step:      g.Step(),
		Moves:     g.Moves(),
		Covered:   covered,
		Accepted:  accepted,
		Recorded:  sess.Recorded(),
		Board:     g.String(),
	}

	if score, ok := g.Score(); ok {
		resp.Score = &scoreResp{
			Moves:     score.Moves,
			TimeMs:    score.TimeMs(),
			Time:      score.FormatTime(),
			ShareText: score.ShareText(s.levelNumber(ctx, sess.Level()), s.shareURL),
		}
	}
	return resp
}

// levelNumber returns the daily level number for share text, or 0.
func (s *Server) levelNumber(ctx context.Context, ref session.LevelRef) int {
	if ref.Kind != session.KindDaily {
		return 0
	}
	level, err := s.dailyLevels.Get(ctx, ref.ID)
	if err != nil || level == nil {
		return 0
	}
	n, err := s.dailyLevels.Number(ctx, level)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) sessionOptions(r *http.Request) []recorder.Option {
	return []recorder.Option{
		recorder.WithAttempts(s.attempts),
		recorder.WithMetrics(s.metrics),
		recorder.WithLogger(s.logger),
		recorder.WithClientIP(clientIP(r)),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var ref session.LevelRef
	var grid sokoban.Grid
	switch {
	case req.DailyID > 0:
		level, err := s.dailyLevels.Get(r.Context(), req.DailyID)
		if err != nil {
			s.logger.Error("failed to load daily level", "daily_id", req.DailyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if level == nil {
			writeError(w, http.StatusNotFound, "No such daily level")
			return
		}
		ref, grid = session.LevelRef{Kind: session.KindDaily, ID: level.DailyID}, level.Layout

	case req.UserLevelID > 0:
		level, err := s.userLevels.Get(r.Context(), req.UserLevelID)
		if err != nil {
			s.logger.Error("failed to load user level", "user_level_id", req.UserLevelID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if level == nil {
			writeError(w, http.StatusNotFound, "No such user level")
			return
		}
		ref, grid = session.LevelRef{Kind: session.KindUser, ID: level.UserLevelID}, level.Layout

	case len(req.Layout) > 0:
		parsed, err := sokoban.ParseGrid(req.Layout)
		if err == nil {
			err = sokoban.ValidateGrid(parsed)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "Invalid layout", Problems: sokoban.Problems(err)})
			return
		}
		ref, grid = session.LevelRef{Kind: session.KindCustom}, parsed

	default:
		writeError(w, http.StatusBadRequest, "One of daily_id, user_level_id or layout is required")
		return
	}

	sess := recorder.New(ref, grid, s.sessionOptions(r)...)
	if err := s.sessions.Save(r.Context(), sess.State()); err != nil {
		s.logger.Error("failed to save session", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.logger.Info("session created", "session", sess.ID(), "level_kind", ref.Kind, "level_id", ref.ID)
	writeJSON(w, http.StatusCreated, s.view(r.Context(), sess, nil))
}

// loadSession resumes the session named in the URL, writing the error
// response itself when it cannot.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*recorder.Session, bool) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Load(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No such session")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return nil, false
	}

	sess, err := recorder.Resume(state, s.sessionOptions(r)...)
	if err != nil {
		s.logger.Error("failed to resume session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Corrupt session")
		return nil, false
	}
	return sess, true
}

func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, sess *recorder.Session, accepted *bool) {
	if err := s.sessions.Save(r.Context(), sess.State()); err != nil {
		s.logger.Error("failed to save session", "session", sess.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, accepted))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, nil))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	defer s.lock(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var d sokoban.Direction
	switch {
	case req.Direction != "":
		parsed, err := sokoban.ParseDirection(req.Direction)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d = parsed
	case req.Target != nil:
		// A target that is not next to the player is a rejected move.
		d, _ = sokoban.DirectionBetween(sess.Game().Player(), *req.Target)
	default:
		writeError(w, http.StatusBadRequest, "direction or target is required")
		return
	}

	accepted, err := sess.Move(r.Context(), d)
	if err != nil {
		// The move stands; the score could not be stored.
		s.logger.Warn("win not recorded", "session", sess.ID(), "error", err)
	}
	s.saveAndRespond(w, r, sess, &accepted)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	defer s.lock(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	applied := sess.Undo()
	s.saveAndRespond(w, r, sess, &applied)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	defer s.lock(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	sess.Restart()
	s.saveAndRespond(w, r, sess, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	sess.Close()
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	s.locks.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
