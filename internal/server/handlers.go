package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/imageio"
	"effects-studio/internal/models"
	"effects-studio/internal/segmentation"
	"effects-studio/internal/session"

	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory bounds how much of an upload stays in memory
	// before spilling to disk.
	multipartMemory = 32 << 20

	defaultModelID = "u2net"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type modelsResponse struct {
	Models []session.ModelInfo `json:"models"`
	Status session.Status      `json:"status"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, modelsResponse{
		Models: s.studio.Models(),
		Status: s.studio.ModelStatus(),
	})
}

func (s *Server) handleModelLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The session id travels in the status payload.
	if _, err := s.studio.AcquireModel(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.studio.ModelStatus())
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readImageUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg, err := effectConfigFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.studio.LoadBytes(data, name); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.studio.ProcessFull(r.Context(), cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer result.Close()

	s.writeImage(w, result, formValue(r, "format", "png"))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readImageUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg, err := effectConfigFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mode, err := qualityFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.studio.LoadBytes(data, name); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.studio.Preview(r.Context(), cfg, mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer result.Image.Close()

	payload, err := imageio.EncodePreview(result.Image, mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Cache-Hit", strconv.FormatBool(result.CacheHit))
	w.Header().Set("X-Elapsed-Ms", strconv.FormatInt(result.Elapsed.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readImageUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	bg, err := segmentation.ParseBackground(formValue(r, "background", "transparent"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.studio.LoadBytes(data, name); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.studio.RemoveBackground(r.Context(), formValue(r, "model", defaultModelID), bg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer result.Close()

	// Transparent output needs a format that carries alpha.
	format := formValue(r, "format", "png")
	if bg.Mode == segmentation.BackgroundTransparent {
		format = "png"
	}
	s.writeImage(w, result, format)
}

// readImageUpload pulls the image part from a multipart request with
// the configured size cap applied.
func (s *Server) readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.studio.Config().MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", apperrors.NewValidationError("failed to parse multipart form", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", apperrors.NewValidationError("image file field is required", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperrors.NewValidationError("failed to read image upload", err)
	}
	return data, header.Filename, nil
}

// effectConfigFrom merges the optional config JSON over the defaults,
// so requests only name the parameters they change.
func effectConfigFrom(r *http.Request) (*models.EffectConfig, error) {
	cfg := models.DefaultEffectConfig()

	raw := r.FormValue("config")
	if raw == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, apperrors.NewValidationError("invalid effect config JSON", err)
	}
	return cfg, nil
}

func qualityFrom(r *http.Request) (models.QualityMode, error) {
	raw := r.FormValue("quality")
	if raw == "" {
		return models.QualityBalanced, nil
	}

	mode, err := models.ParseQualityMode(raw)
	if err != nil {
		return "", apperrors.NewValidationError(err.Error(), nil)
	}
	return mode, nil
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
