package controllers

import (
	"net/http"

	"github.com/jacksonlee411/onboarding-withholding/internal/routing"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	routing.WriteError(w, r, routing.RouteClassInternalAPI, status, code, message)
}

func writeFieldError(w http.ResponseWriter, r *http.Request, status int, code string, message string, field string) {
	routing.WriteFieldError(w, r, routing.RouteClassInternalAPI, status, code, message, field)
}
