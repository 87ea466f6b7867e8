package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
)

// AccountHandler 注册登录、个人资料，以及后台用户管理
type AccountHandler struct {
	svc   *service.UserService
	gates Gates
	log   *zap.Logger
}

func NewAccountHandler(svc *service.UserService, gates Gates, log *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, gates: gates, log: log}
}

func (h *AccountHandler) Priority() int { return 0 }

type credentialsIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileIn struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type roleIn struct {
	Role string `json:"role" binding:"required"`
}

func (h *AccountHandler) MountAPI(g *gin.RouterGroup) {
	public := ez.New(g, h.log)
	authed := public.Group("", h.gates.Authenticated)

	ez.RegisterAction(public, ez.Action[credentialsIn, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ domain.Principal, in *credentialsIn) (*service.AuthResult, error) {
			return h.svc.Register(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.RegisterAction(public, ez.Action[credentialsIn, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Principal, in *credentialsIn) (*service.AuthResult, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodPost,
		Path:   "/auth/verify",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (*domain.User, error) {
			return h.svc.Verify(c.Request.Context(), p)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/profile",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (*domain.User, error) {
			return h.svc.Profile(c.Request.Context(), p)
		},
	})

	ez.RegisterAction(authed, ez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/profile",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p domain.Principal, in *profileIn) (*domain.User, error) {
			return h.svc.UpdateProfile(c.Request.Context(), p, service.ProfileInput{Email: in.Email, Password: in.Password})
		},
	})
}

// MountAdmin 分组已挂 RequireAdmin
func (h *AccountHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[PageQuery, domain.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, p domain.Principal, in *PageQuery) (domain.Page[domain.User], error) {
			page, err := in.request()
			if err != nil {
				return domain.Page[domain.User]{}, err
			}
			return h.svc.List(c.Request.Context(), p, page)
		},
	})

	ez.RegisterAction(e, ez.Action[roleIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p domain.Principal, in *roleIn) (*domain.User, error) {
			return h.svc.SetRole(c.Request.Context(), p, c.Param("id"), in.Role)
		},
	})
}
