package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/user/microblog-go/apperror"
)

// Redirect targets. The renderer that turns these into pages is an external
// collaborator; the core only names the destinations.
const (
	// RootPath is where forbidden requests and successful registrations land.
	RootPath = "/"
	// SignInPath is where unauthenticated requests are sent.
	SignInPath = "/signin"
	// UsersPath is where a successful destroy lands.
	UsersPath = "/users"
)

// FlashCookieName is the cookie carrying the one-shot notice for the next page.
const FlashCookieName = "flash"

// Flash kinds.
const (
	FlashNotice  = "notice"
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message attached to a redirect, mirroring the classic
// web-app flash: the next page renders it once and the cookie is cleared.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash attaches a flash message to the response as a cookie. The value is
// base64url-encoded JSON so the message text survives cookie encoding rules.
func SetFlash(w http.ResponseWriter, kind, message string) {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
	})
}

// ReadFlash decodes a flash cookie value previously written by SetFlash.
func ReadFlash(value string) (*Flash, bool) {
	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, false
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false
	}
	return &f, true
}

// Redirect sends a 303 See Other to location, optionally with a flash
// message. 303 forces the follow-up to be a GET regardless of the method that
// triggered the redirect.
func Redirect(w http.ResponseWriter, r *http.Request, location string, flash *Flash) {
	if flash != nil {
		SetFlash(w, flash.Kind, flash.Message)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// WriteJSON serializes data to JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized error response for any error. Errors that
// are not *AppError are wrapped as internal errors so nothing leaks.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// Require runs the authorization policy for the request and, on denial,
// writes the mapped response: unauthenticated requests are redirected to the
// sign-in path with a "please sign in" notice, forbidden requests to the
// application root with no flash. It returns the resolved identity and
// whether the handler may proceed. Handlers must not touch the directory or
// the follow graph when ok is false.
func Require(w http.ResponseWriter, r *http.Request, action Action, targetUserID int) (*Identity, bool) {
	identity := IdentityFromContext(r.Context())
	switch Decide(identity, action, targetUserID) {
	case Allow:
		return identity, true
	case DenyUnauthenticated:
		Redirect(w, r, SignInPath, &Flash{Kind: FlashNotice, Message: "Please sign in."})
		return nil, false
	default: // DenyForbidden
		Redirect(w, r, RootPath, nil)
		return identity, false
	}
}
