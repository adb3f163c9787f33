package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/services"
)

// SetToast sets the HX-Trigger response header so the quote builder UI shows
// a toast notification. An existing HX-Trigger JSON object is merged into.
// It also sets a flash cookie so toasts survive regular redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = toast

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(toast)
	if err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // JS needs to read it
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorJSON writes {"error": {"type", "message"}} with the given status and
// mirrors the message to an error toast. HX-Reswap none keeps HTMX from
// swapping the error body into the page.
func ErrorJSON(e *core.RequestEvent, status int, errType, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.JSON(status, api.ErrorBody{Error: api.ErrorDetail{Type: errType, Message: message}})
}

// BadRequest reports malformed input.
func BadRequest(e *core.RequestEvent, message string) error {
	return ErrorJSON(e, http.StatusBadRequest, api.ErrorValidation, message)
}

// NotFound reports a missing record.
func NotFound(e *core.RequestEvent, message string) error {
	return ErrorJSON(e, http.StatusNotFound, api.ErrorNotFound, message)
}

// RespondError maps err to a status: validation errors are 400 with their
// own message, missing records 404, anything else 500 with a generic message.
// Non-validation errors are logged under component.
func RespondError(e *core.RequestEvent, component string, err error) error {
	switch {
	case services.IsValidationError(err):
		return BadRequest(e, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		return NotFound(e, "Record not found")
	}
	log.Printf("%s: %v (request %s)", component, err, RequestID(e.Request))
	return ErrorJSON(e, http.StatusInternalServerError, api.ErrorInternal, "Something went wrong. Please try again.")
}
