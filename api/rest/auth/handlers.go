package auth

import (
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// gothic session key holding the CLI's loopback redirect
const redirectSessionKey = "redirect_uri"

// SignUpHandler godoc
// @Summary Create an account
// @Description Register with email and password. Creates the profile and a free membership.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body accounts.SignUpRequest true "Sign-up details"
// @Success 201 {object} accounts.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/signup [post]
func SignUpHandler(service *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accounts.SignUpRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := service.SignUp(c.Request.Context(), req)
		if err != nil {
			var validation *accounts.ValidationError

			switch {
			case stderrors.As(err, &validation):
				errors.ValidationError(c, validation)
			case stderrors.Is(err, accounts.ErrEmailTaken):
				errors.Conflict(c, err.Error())
			default:
				errors.InternalError(c, "failed to create account", err)
			}

			return
		}

		c.JSON(http.StatusCreated, session)
	}
}

// SignInHandler godoc
// @Summary Sign in
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body accounts.SignInRequest true "Credentials"
// @Success 200 {object} accounts.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/signin [post]
func SignInHandler(service *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accounts.SignInRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := service.SignIn(c.Request.Context(), req)
		if stderrors.Is(err, accounts.ErrInvalidCredentials) {
			errors.Unauthorized(c, err.Error())
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to sign in", err)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// SignOutHandler godoc
// @Summary Sign out
// @Description Revoke the current session token
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/signout [post]
// @Security BearerAuth
func SignOutHandler(service *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenID, expiresAt, _ := auth.GetTokenID(c)

		if err := service.SignOut(c.Request.Context(), tokenID, expiresAt); err != nil {
			errors.InternalError(c, "failed to sign out", err)
			return
		}

		// clears any leftover OAuth state cookie
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.WarnErr(err, "failed to clear oauth session")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "signed out successfully"})
	}
}

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication with a configured provider. redirect_uri must be a loopback URL.
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Param redirect_uri query string false "Loopback URL that receives the issued token"
// @Success 307 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler(providers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		if redirect := c.Query("redirect_uri"); redirect != "" {
			if !isLoopbackRedirect(redirect) {
				errors.BadRequest(c, "redirect_uri must be a loopback address", nil)
				return
			}

			if err := gothic.StoreInSession(redirectSessionKey, redirect, c.Request, c.Writer); err != nil {
				errors.InternalError(c, "failed to start authentication", err)
				return
			}
		}

		setProviderQuery(c, provider)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Redirects to the stored loopback URL with the token, or returns the session as JSON.
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 200 {object} accounts.Session
// @Success 302 {string} string "Redirect to loopback URL"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(service *accounts.Service, providers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		// read before CompleteUserAuth, which clears the gothic session
		redirect, _ := gothic.GetFromSession(redirectSessionKey, c.Request)

		setProviderQuery(c, provider)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			if redirect != "" {
				redirectWith(c, redirect, url.Values{"error": {"authentication failed"}})
				return
			}

			errors.InternalError(c, "authentication failed", err)
			return
		}

		session, err := service.CompleteOAuth(c.Request.Context(), gothUser)
		if err != nil {
			if redirect != "" {
				logger.ErrorErr(err, "failed to complete oauth sign-in", "provider", provider)
				redirectWith(c, redirect, url.Values{"error": {"failed to create account"}})
				return
			}

			errors.InternalError(c, "failed to create account", err)
			return
		}

		if redirect != "" {
			redirectWith(c, redirect, url.Values{
				"access_token": {session.AccessToken},
				"expires_at":   {session.ExpiresAt.UTC().Format(time.RFC3339)},
			})
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the authenticated user's profile and active membership
// @Tags auth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(loader *profiles.Loader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		result := loader.Load(c.Request.Context(), userID)
		if result.Profile == nil {
			errors.NotFound(c, "profile")
			return
		}

		c.JSON(http.StatusOK, MeResponse{User: result.Profile, Membership: result.Membership})
	}
}

// UpdateProfileHandler godoc
// @Summary Update user profile
// @Description Update the authenticated user's username and avatar
// @Tags auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [put]
// @Security BearerAuth
func UpdateProfileHandler(repo profiles.Repository, hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req UpdateProfileRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := repo.UpdateProfile(c.Request.Context(), userID, req.Username, req.AvatarURL)
		if stderrors.Is(err, profiles.ErrNotFound) {
			errors.NotFound(c, "profile")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to update profile", err)
			return
		}

		if hub != nil {
			if err := hub.Publish(userID, events.TypeProfileUpdated, nil); err != nil {
				logger.WarnErr(err, "failed to publish profile update", "user_id", userID)
			}
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// gothic reads the provider from the query string
func setProviderQuery(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}

// only loopback http URLs are accepted so tokens never leave the caller's machine
func isLoopbackRedirect(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" || u.User != nil {
		return false
	}

	host := u.Hostname()
	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func redirectWith(c *gin.Context, target string, params url.Values) {
	u, err := url.Parse(target)
	if err != nil {
		errors.BadRequest(c, "invalid redirect_uri", err)
		return
	}

	q := u.Query()
	for k, v := range params {
		q[k] = v
	}

	u.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, u.String())
}
