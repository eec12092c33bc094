package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"` // buyer | seller
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	UserID   string     `json:"userId"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	UserType model.Role `json:"userType"`
	SellerID *string    `json:"sellerId"`
	BuyerID  *string    `json:"buyerId"`
	AdminID  *string    `json:"adminId"`
}
type authResp struct {
	Message      string    `json:"message"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         userPart  `json:"user"`
}

func userPartOf(p model.Principal) userPart {
	return userPart{
		UserID:   p.UserID,
		Name:     p.Name,
		Email:    p.Email,
		UserType: p.Role,
		SellerID: nullable(p.SellerID),
		BuyerID:  nullable(p.BuyerID),
		AdminID:  nullable(p.AdminID),
	}
}

// issue signs an access token for p, stores a fresh refresh token and writes
// the auth response.
func (h *AuthHandler) issue(c echo.Context, status int, msg string, p model.Principal) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p, h.Cfg.AccessTTLMin)
	if err != nil {
		return serverError(c, err, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return serverError(c, err, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, p.UserID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return serverError(c, err, "save refresh failed")
	}
	return c.JSON(status, authResp{
		Message:      msg,
		Token:        access.Token,
		ExpiresAt:    access.Exp,
		RefreshToken: refresh.Raw, // raw back to client, only the hash is stored
		User:         userPartOf(p),
	})
}

// Register creates the user with its buyer role, cart and optional seller
// role in one transaction, then signs the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.UserType = strings.ToLower(strings.TrimSpace(req.UserType))
	if req.Name == "" || req.Email == "" || req.Password == "" || req.UserType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, password and userType are required"})
	}
	if req.UserType != string(model.RoleBuyer) && req.UserType != string(model.RoleSeller) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userType must be buyer or seller"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, req.Email)
	if err != nil {
		return serverError(c, err, "registration failed")
	}
	if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return serverError(c, err, "registration failed")
	}
	u, ids, err := h.Users.Create(ctx, repository.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AsSeller:     req.UserType == string(model.RoleSeller),
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered"})
	}
	if err != nil {
		return serverError(c, err, "registration failed")
	}

	p, _ := model.NewPrincipal(u, ids) // always has the buyer role
	msg := "Buyer registered successfully"
	if p.Role == model.RoleSeller {
		msg = "Seller registered successfully"
	}
	return h.issue(c, http.StatusCreated, msg, p)
}

// Login verifies the password and resolves the user's role once.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}
	if err != nil {
		return serverError(c, err, "login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}

	ids, err := h.Users.RoleIDs(ctx, u.ID)
	if err != nil {
		return serverError(c, err, "login failed")
	}
	p, ok := model.NewPrincipal(u, ids)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account has no role"})
	}
	return h.issue(c, http.StatusOK, "Login successful", p)
}

// Refresh validates by hash, consumes the old token and issues a new pair.
// The role is resolved again so role changes take effect on refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := dbCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return serverError(c, err, "refresh failed")
	}
	err = h.Tokens.ConsumeRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return serverError(c, err, "refresh failed")
	}

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return serverError(c, err, "load user failed")
	}
	ids, err := h.Users.RoleIDs(ctx, u.ID)
	if err != nil {
		return serverError(c, err, "load user failed")
	}
	p, ok := model.NewPrincipal(u, ids)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account has no role"})
	}
	return h.issue(c, http.StatusOK, "Token refreshed", p)
}

// Logout revokes the given refresh token.  Unknown tokens are not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return serverError(c, err, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the verified claims of the caller.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userPartOf(p))
}

// CheckUser is a diagnostic lookup of a user's role rows.
func (h *AuthHandler) CheckUser(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}
	if err != nil {
		return serverError(c, err, "user lookup failed")
	}
	ids, err := h.Users.RoleIDs(ctx, u.ID)
	if err != nil {
		return serverError(c, err, "user lookup failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": u,
		"roles": echo.Map{
			"isAdmin":  ids.AdminID != "",
			"isSeller": ids.SellerID != "",
			"isBuyer":  ids.BuyerID != "",
		},
	})
}
