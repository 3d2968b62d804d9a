package api

import (
	"encoding/json"
	"net/http"

	"github.com/the-lightning-land/wifid/connection"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		a.log.Errorf("Could not respond with JSON: %v", err)
	}
}

func (a *Api) jsonError(w http.ResponseWriter, message string, code int) {
	a.jsonResponse(w, &errorResponse{
		Error: message,
	}, code)
}

// jsonFailure responds to a failed connection operation.
func (a *Api) jsonFailure(w http.ResponseWriter, err error) {
	a.jsonResponse(w, &errorResponse{
		Error:  err.Error(),
		Reason: connection.ReasonOf(err).String(),
	}, http.StatusBadGateway)
}
