package main

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/model"
	"github.com/protomem/night-stations/internal/response"

	"golang.org/x/oauth2"
)

const (
	_sessionCookie  = "session"
	_stateCookie    = "google_oauth_state"
	_verifierCookie = "google_code_verifier"

	_oauthCookieTTL = 10 * time.Minute

	_userinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Handle Google Login
// @Summary Start Google Sign-In
// @Description Redirects to the identity provider with state and PKCE challenge
// @Router /auth/login/google [get]
func (app *application) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := generateToken(16)
	verifier := oauth2.GenerateVerifier()

	setTempCookie(w, _stateCookie, state)
	setTempCookie(w, _verifierCookie, verifier)

	url := app.google.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	response.Redirect(w, r, http.StatusFound, url)
}

type googleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Handle Google Callback
// @Summary OAuth Redirect Target
// @Description Exchanges the code, upserts the user and starts a session
// @Router /auth/callback/google [get]
func (app *application) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var (
		code        = r.URL.Query().Get("code")
		state       = r.URL.Query().Get("state")
		storedState = cookieValue(r, _stateCookie)
		verifier    = cookieValue(r, _verifierCookie)
	)

	clearTempCookie(w, _stateCookie)
	clearTempCookie(w, _verifierCookie)

	if code == "" || state == "" || storedState == "" || state != storedState || verifier == "" {
		app.errorMessage(w, r, http.StatusBadRequest, "Invalid request", nil)
		return
	}

	token, err := app.google.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			app.errorMessage(w, r, http.StatusBadRequest, "OAuth error", nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	profile, err := app.fetchGoogleProfile(ctx, token)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	userDAO := database.NewUserDAO(logger, app.db)

	user, err := userDAO.GetByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			app.serverError(w, r, err)
			return
		}

		dto := database.InsertUserDTO{
			ID:    profile.Sub,
			Email: profile.Email,
			Name:  profile.Name,
		}
		if profile.Picture != "" {
			dto.Picture = &profile.Picture
		}

		if err := userDAO.Insert(ctx, dto); err != nil {
			app.serverError(w, r, err)
			return
		}

		user, err = userDAO.Get(ctx, profile.Sub)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
	}

	sessionToken := generateToken(32)
	expiresAt := time.Now().Add(app.config.session.ttl)

	if err := database.NewSessionDAO(logger, app.db).Insert(ctx, database.InsertSessionDTO{
		Token:     sessionToken,
		User:      user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     _sessionCookie,
		Value:    sessionToken,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Redirect(w, r, http.StatusFound, "/")
}

// Handle Logout
// @Summary Logout
// @Description Deletes the session and clears the cookie
// @Router /auth/logout [post]
func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	if token := cookieValue(r, _sessionCookie); token != "" {
		if err := database.NewSessionDAO(logger, app.db).Delete(ctx, token); err != nil {
			app.serverError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     _sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Redirect(w, r, http.StatusFound, "/")
}

func (app *application) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	client := app.google.Client(ctx, token)

	resp, err := client.Get(_userinfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, errors.New("userinfo request failed")
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return googleProfile{}, err
	}

	if profile.Sub == "" || profile.Email == "" {
		return googleProfile{}, errors.New("userinfo response incomplete")
	}

	return profile, nil
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setTempCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(_oauthCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTempCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateToken returns n random bytes as lowercase unpadded base32, the
// opaque token format used for sessions and OAuth state.
func generateToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b))
}
