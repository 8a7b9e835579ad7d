// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/skill-catalog/internal/catalog"
	"github.com/pdiddy/skill-catalog/internal/effect"
	"github.com/pdiddy/skill-catalog/internal/httputil"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

// characterID parses the {id} path value. It writes a 400 and returns
// false when the id is not a positive integer.
func characterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		httputil.WriteError(w, http.StatusBadRequest, "invalid character id", raw)
		return 0, false
	}
	return id, true
}

// storeError maps a catalog error to a response.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "character not found", "")
		return
	}
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("request_id", r.Header.Get(httputil.RequestIDHeader)),
	)
	httputil.WriteError(w, http.StatusInternalServerError, msg, err.Error())
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := s.catalog.Characters(r.Context())
	if err != nil {
		s.storeError(w, r, "failed to list characters", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"characters": orEmpty(chars),
	})
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	c, err := s.catalog.Character(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "failed to load character", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"character": c,
	})
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		s.storeError(w, r, "failed to delete character", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            fmt.Sprintf("character %d deleted", id),
		"deletedCharacterId": id,
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	c, err := s.catalog.Character(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "failed to load character", err)
		return
	}
	groups, err := s.catalog.Skills(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "failed to load skills", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"character":          c,
		"combat_skills":      orEmpty(groups.Combat),
		"additional_effects": orEmpty(groups.AdditionalEffects),
		"eidolons":           orEmpty(groups.Eidolons),
	})
}

func (s *Server) handleBuffs(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}

	level := 0
	if raw := r.URL.Query().Get("eidolon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > types.MaxEidolonLevel {
			httputil.WriteError(w, http.StatusBadRequest,
				fmt.Sprintf("eidolon must be 0-%d", types.MaxEidolonLevel), raw)
			return
		}
		level = n
	}

	c, err := s.catalog.Character(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "failed to load character", err)
		return
	}
	buffs, err := s.catalog.Buffs(r.Context(), id, level)
	if err != nil {
		s.storeError(w, r, "failed to load buffs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"character":     c,
		"eidolon_level": level,
		"buffs_debuffs": orEmpty(buffs),
	})
}

// formFile returns the first present multipart file among names.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, names ...string) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart upload", err.Error())
		return nil, false
	}
	for _, name := range names {
		f, _, err := r.FormFile(name)
		if err == nil {
			return f, true
		}
	}
	httputil.WriteError(w, http.StatusBadRequest, "no csv file uploaded",
		fmt.Sprintf("expected form field %q", names[0]))
	return nil, false
}

type uploadResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Character    types.Character `json:"character"`
	UploadID     string          `json:"upload_id"`
	Skills       int             `json:"skills"`
	Effects      int             `json:"effects"`
	Enhancements int             `json:"eidolon_enhancements"`
	Warnings     []string        `json:"warnings"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, ok := s.formFile(w, r, "csv")
	if !ok {
		return
	}
	defer f.Close()

	res, err := s.importer.Parse(f)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "could not parse csv", err.Error())
		return
	}

	summary, err := s.catalog.Import(r.Context(), &res.Import)
	if err != nil {
		s.storeError(w, r, "failed to store character", err)
		return
	}

	c := res.Import.Character
	c.ID = summary.CharacterID
	warnings := res.Warnings
	if summary.Unresolved > 0 {
		warnings = append(warnings,
			fmt.Sprintf("%d eidolon enhancements reference unknown effects and were skipped", summary.Unresolved))
	}
	httputil.WriteJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		Message: fmt.Sprintf("%s imported: %d skills, %d effects",
			c.Name, summary.Skills, summary.Effects),
		Character:    c,
		UploadID:     res.UploadID,
		Skills:       summary.Skills,
		Effects:      summary.Effects,
		Enhancements: summary.Enhancements,
		Warnings:     orEmpty(warnings),
	})
}

func (s *Server) handleUpdateStats(w http.ResponseWriter, r *http.Request) {
	f, ok := s.formFile(w, r, "csvFile", "csv")
	if !ok {
		return
	}
	defer f.Close()

	res, err := s.importer.ParseStats(f)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "could not parse stats csv", err.Error())
		return
	}

	summary, err := s.catalog.UpdateStats(r.Context(), res.Rows)
	if err != nil {
		s.storeError(w, r, "failed to update stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("updated %d characters, %d not found",
			len(summary.Updated), len(summary.NotFound)),
		"updated_characters":   orEmpty(summary.Updated),
		"not_found_characters": orEmpty(summary.NotFound),
		"warnings":             orEmpty(res.Warnings),
	})
}

type analyzeRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, s.cfg.MaxUploadBytes))
	if err := dec.Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body", err.Error())
		return
	}
	category, err := types.ParseCategory(req.Category)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "unknown skill category", err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"category": category,
		"effects":  orEmpty(effect.Extract(category, req.Description)),
	})
}
