package api

import (
	"net/http"

	"github.com/Domenick1991/oceanview/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service           users.UsersUseCase
	exposeResetTokens bool
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NewUserHandler builds the account endpoints. With exposeResetTokens set the
// reset request response carries the token, for environments without mail.
func NewUserHandler(service users.UsersUseCase, exposeResetTokens bool) *UserHandler {
	return &UserHandler{service: service, exposeResetTokens: exposeResetTokens}
}

func (h *UserHandler) Register(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.POST("/reset-password-request", h.requestReset)
	router.POST("/reset-password", h.resetPassword)

	router.GET("/user", requireAuth, h.me)
	router.PATCH("/profile", requireAuth, h.updateProfile)
	router.POST("/profile/change-password", requireAuth, h.changePassword)
}

func (h *UserHandler) register(c *gin.Context) {
	var input users.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// logout is a no-op for stateless tokens; the client discards its token.
func (h *UserHandler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input users.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) changePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requestReset answers the same way whether or not the email is known.
func (h *UserHandler) requestReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	token, err := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"success": true, "message": "If the email is registered, a reset link has been sent."}
	if h.exposeResetTokens && token != "" {
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
