package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const authTimeout = 5 * time.Second

type Credentials interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (user.Profile, error)
	UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Profile, error)
}

type AuthHandler struct {
	creds Credentials
	log   *slog.Logger
}

func NewAuthHandler(creds Credentials, log *slog.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, log: log}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, authTimeout)
	defer cancel()

	u, err := h.creds.Register(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("User %s created successfully", u.Name),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, authTimeout)
	defer cancel()

	profile, err := h.creds.Login(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    profile,
	})
}

// UpdateProfile only answers numeric ids; anything else is treated as an unknown route.
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		RespondNotFound(ctx, "user not found")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, authTimeout)
	defer cancel()

	profile, err := h.creds.UpdateProfile(cctx, id, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    profile,
	})
}
