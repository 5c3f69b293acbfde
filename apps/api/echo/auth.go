package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/rbac"
)

var contextPenggunaKey = "pengguna"

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	NamaLengkap  string `json:"nama_lengkap,omitempty"`
	Role         string `json:"role,omitempty"`
}

// NewClaims builds the claims of a pengguna. origIat keeps the first issue time across refreshes.
func (s *Server) NewClaims(p pengguna.Pengguna, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.Conf.AppName,
			Subject:   p.ID,
			Audience:  "Asprak",
			ExpiresAt: now.Add(s.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        p.Email,
		NamaLengkap:  p.NamaLengkap,
		Role:         p.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (s *Server) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwt.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwt.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *Server) getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(s.jwt.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextPengguna loads the authenticated pengguna once per request.
func (s *Server) getContextPengguna(ctx echo.Context) (pengguna.Pengguna, error) {
	if p, ok := ctx.Get(contextPenggunaKey).(pengguna.Pengguna); ok {
		return p, nil
	}
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return pengguna.Pengguna{}, err
	}
	p, err := s.PenggunaSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == pengguna.ErrNotFound {
			return pengguna.Pengguna{}, errUnauthorized
		}
		return pengguna.Pengguna{}, errors.Wrap(err, "finding pengguna by ID")
	}
	ctx.Set(contextPenggunaKey, p)
	return p, nil
}

func (s *Server) authenticate(ctx echo.Context, email, pwd string) (pengguna.Pengguna, error) {
	p, err := s.PenggunaSvc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if err == pengguna.ErrNotFound {
			return pengguna.Pengguna{}, errAuthenticationFailed
		}
		return pengguna.Pengguna{}, errors.Wrap(err, "finding pengguna by email")
	}
	if err = p.CheckPassword(pwd); err != nil {
		return pengguna.Pengguna{}, errAuthenticationFailed
	}
	if !p.IsActive {
		return pengguna.Pengguna{}, errAccountDeactivated
	}
	p, err = s.PenggunaSvc.SetLastLogin(ctx.Request().Context(), p)
	return p, errors.Wrap(err, "setting last login")
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	p, err := s.getContextPengguna(ctx)
	if err != nil {
		return "", err
	}
	if !p.IsActive {
		return "", errAccountDeactivated
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}
	return s.GenerateToken(s.NewClaims(p, claims.OrigIssuedAt))
}

func (s *Server) registerAuthAPI(public, authed *echo.Group) {
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	public.POST("/auth/login", s.login)
	public.POST("/auth/password-reset", s.requestPasswordReset)
	public.POST("/auth/password-reset-confirm", s.confirmPasswordReset)

	authed.POST("/auth/token-refresh", s.refresh)
	authed.GET("/auth/me", s.me)
	authed.GET("/auth/access", s.access)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token    string `json:"token"`
		Role     string `json:"role"`
		Redirect string `json:"redirect"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	MeResponse struct {
		pengguna.Pengguna
		Assignments []pengguna.Assignment `json:"assignments"`
	}

	AccessResponse struct {
		Allowed  bool   `json:"allowed"`
		Redirect string `json:"redirect"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (s *Server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	p, err := s.authenticate(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := s.GenerateToken(s.NewClaims(p))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return respond(ctx, http.StatusOK, LoginResponse{Token: token, Role: p.Role, Redirect: rbac.DefaultRedirect(p.Role)})
}

func (s *Server) refresh(ctx echo.Context) error {
	token, err := s.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	claims, _ := s.getContextClaims(ctx)
	return respond(ctx, http.StatusOK, LoginResponse{Token: token, Role: claims.Role, Redirect: rbac.DefaultRedirect(claims.Role)})
}

func (s *Server) requestPasswordReset(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	err := s.PenggunaSvc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if !(err == nil || errors.Cause(err) == pengguna.ErrNotFound) {
		// do not return errors to attackers
		s.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return respondMessage(ctx, http.StatusOK,
		"If the email address supplied is associated with an active account on this system, "+
			"an email will arrive in your inbox shortly with instructions to reset your password.")
}

func (s *Server) confirmPasswordReset(ctx echo.Context) error {
	var data pengguna.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}
	if err := s.PenggunaSvc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return respondMessage(ctx, http.StatusOK, "Password has been reset with the new password.")
}

func (s *Server) me(ctx echo.Context) error {
	p, err := s.getContextPengguna(ctx)
	if err != nil {
		return err
	}
	as, err := s.PenggunaSvc.Assignments(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return respond(ctx, http.StatusOK, MeResponse{Pengguna: p, Assignments: as})
}

// access tells the UI whether the caller may open a page, and where to go otherwise.
func (s *Server) access(ctx echo.Context) error {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return err
	}
	path := ctx.QueryParam("path")
	return respond(ctx, http.StatusOK, AccessResponse{
		Allowed:  rbac.IsPublicPath(path) || rbac.HasAccess(claims.Role, path),
		Redirect: rbac.DefaultRedirect(claims.Role),
	})
}
