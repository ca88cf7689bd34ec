// Package apiresp — единый конверт ответов API:
// {status:"success", data:...} / {status:"fail", message:...}.
package apiresp

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func write(w http.ResponseWriter, code int, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(e)
}

func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

func Fail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// без поля data в fail-ответах
	_ = json.NewEncoder(w).Encode(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "fail", Message: msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter) {
	Fail(w, http.StatusNotFound, "Row not found")
}

func Unauthorized(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, "Not authorized to perform this action")
}

func Unprocessable(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusUnprocessableEntity, msg)
}

func Internal(w http.ResponseWriter, err error) {
	Fail(w, http.StatusInternalServerError, err.Error())
}
