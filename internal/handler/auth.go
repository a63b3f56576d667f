package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/service"
)

// AuthHandler exposes the authentication and profile endpoints.
type AuthHandler struct {
	Auth *service.Auth
}

func NewAuthHandler(a *service.Auth) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"empresa"`
	Phone    string `json:"telefone"`
}

func (r *registerReq) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if n := utf8.RuneCountInString(r.Name); n < 3 || n > 100 {
		return badRequest("nome must be between 3 and 100 characters")
	}
	if len(r.Email) > 255 || !validEmail(r.Email) {
		return badRequest("invalid email")
	}
	if n := len(r.Password); n < 6 || n > 100 {
		return badRequest("password must be between 6 and 100 characters")
	}
	if utf8.RuneCountInString(r.Company) > 100 {
		return badRequest("empresa too long")
	}
	if len(r.Phone) > 20 {
		return badRequest("telefone too long")
	}
	return nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginReq) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if !validEmail(r.Email) {
		return badRequest("invalid email")
	}
	if r.Password == "" {
		return badRequest("password is required")
	}
	return nil
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *refreshReq) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return badRequest("refreshToken is required")
	}
	return nil
}

type updateProfileReq struct {
	Name      *string `json:"nome"`
	Company   *string `json:"empresa"`
	Phone     *string `json:"telefone"`
	AvatarURL *string `json:"avatar_url"`
}

func (r *updateProfileReq) Validate() error {
	if r.Name != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*r.Name)); n < 3 || n > 100 {
			return badRequest("nome must be between 3 and 100 characters")
		}
	}
	if r.Company != nil && utf8.RuneCountInString(*r.Company) > 100 {
		return badRequest("empresa too long")
	}
	if r.Phone != nil && len(*r.Phone) > 20 {
		return badRequest("telefone too long")
	}
	if r.AvatarURL != nil && *r.AvatarURL != "" && !validURL(*r.AvatarURL) {
		return badRequest("invalid avatar_url")
	}
	return nil
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *changePasswordReq) Validate() error {
	if r.CurrentPassword == "" {
		return badRequest("currentPassword is required")
	}
	if n := len(r.NewPassword); n < 6 || n > 100 {
		return badRequest("newPassword must be between 6 and 100 characters")
	}
	return nil
}

type authResp struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ----- Handlers -----

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Company:  req.Company,
		Phone:    req.Phone,
	}, clientMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, authResp{User: res.User, AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password, clientMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, authResp{User: res.User, AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
}

// Refresh handles POST /api/auth/refresh-token. It returns a new access
// token only; the refresh token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	access, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"accessToken": access})
}

// Logout handles POST /api/auth/logout. The refresh token is optional and
// the endpoint always reports success.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // body may be absent

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Auth.Logout(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, msg)
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Profile(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.UpdateProfile(ctx, uid, service.ProfileUpdate{
		Name:      req.Name,
		Company:   req.Company,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Auth.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, msg)
}
