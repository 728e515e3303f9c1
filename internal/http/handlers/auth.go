package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/middleware"
	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// POST /api/auth/signin
// body: { "email": "...", "password": "...", "role": "admin" | "agent" }
// Agents may send their username in either "email" or "username".
func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	res, err := ah.authService.SignIn(c.Request.Context(), services.SignInInput{
		Identifier: identifier,
		Password:   req.Password,
		Role:       req.Role,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.Token, int(ah.authService.GetAccessTTL().Seconds()), "/", "", ah.secureCookie, true)
	response.RespondOK(c, gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

// POST /api/auth/signout
func (ah *AuthHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ah.secureCookie, true)
	response.RespondOK(c, gin.H{"ok": true})
}
