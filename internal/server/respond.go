package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/imageio"
	"effects-studio/internal/opencv/safe"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Error   string                 `json:"error"`
	Kind    string                 `json:"kind"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Kind: string(apperrors.TypeOf(err))}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Details = appErr.Details
	}
	if body.Kind == "" {
		body.Kind = "internal"
	}

	s.logger.Debug("HTTP", "request failed", map[string]interface{}{
		"kind":  body.Kind,
		"error": err.Error(),
	})

	respondJSON(w, apperrors.StatusOf(err), body)
}

func (s *Server) writeImage(w http.ResponseWriter, mat *safe.Mat, format string) {
	payload, err := imageio.Encode(mat, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func contentTypeFor(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/" + format
	}
}
