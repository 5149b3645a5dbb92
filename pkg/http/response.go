package http

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
)

// Envelope is the response shape for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type Meta struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"totalPage"`
	Stats     any   `json:"stats,omitempty"`
}

func NewMeta(page, limit int, total int64) *Meta {
	totalPage := 0
	if limit > 0 {
		totalPage = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{
		Page:      page,
		Limit:     limit,
		Total:     total,
		TotalPage: totalPage,
	}
}

func (m *Meta) WithStats(stats any) *Meta {
	m.Stats = stats
	return m
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(payload)
}

func WriteSuccess(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func WritePaginated(w http.ResponseWriter, message string, data any, meta *Meta) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: meta})
}

// WriteError maps any error onto the envelope. Unrecognized errors become
// 500s with a generic message; the caller is expected to have logged them.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	body := Envelope{
		Success: false,
		Message: appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body.Data = appErr.Details
	}
	return WriteJSON(w, appErr.HTTPStatus, body)
}
