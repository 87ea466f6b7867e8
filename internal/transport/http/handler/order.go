package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
)

type OrderHandler struct {
	svc   *service.OrderService
	gates Gates
	log   *zap.Logger
}

func NewOrderHandler(svc *service.OrderService, gates Gates, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, gates: gates, log: log}
}

func (h *OrderHandler) Priority() int { return 20 }

type orderItemIn struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type orderCreateIn struct {
	Items []orderItemIn    `json:"items"`
	Total *decimal.Decimal `json:"total"`
}

type orderListQuery struct {
	Status string `form:"status"`
	PageQuery
}

type statusIn struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) MountAPI(g *gin.RouterGroup) {
	authed := ez.New(g, h.log).Group("", h.gates.Authenticated)
	admin := ez.New(g, h.log).Group("", h.gates.Admin)

	ez.RegisterAction(authed, ez.Action[orderCreateIn, *domain.Order]{
		Method: http.MethodPost,
		Path:   "/orders",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, p domain.Principal, in *orderCreateIn) (*domain.Order, error) {
			items := make([]domain.ItemRequest, 0, len(in.Items))
			for _, it := range in.Items {
				items = append(items, domain.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
			}
			return h.svc.Create(c.Request.Context(), p, service.CreateOrderInput{Items: items, Total: in.Total})
		},
	})

	h.mountList(authed)

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.OrderDetail]{
		Method: http.MethodGet,
		Path:   "/orders/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (*domain.OrderDetail, error) {
			return h.svc.Get(c.Request.Context(), p, c.Param("id"))
		},
	})

	h.mountStatus(admin)
}

// MountAdmin 分组已挂 RequireAdmin
func (h *OrderHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)
	h.mountList(e)
	h.mountStatus(e)
}

func (h *OrderHandler) mountList(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[orderListQuery, domain.Page[domain.Order]]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, p domain.Principal, in *orderListQuery) (domain.Page[domain.Order], error) {
			page, err := in.request()
			if err != nil {
				return domain.Page[domain.Order]{}, err
			}
			return h.svc.List(c.Request.Context(), p, service.ListOrdersInput{Status: in.Status, PageRequest: page})
		},
	})
}

func (h *OrderHandler) mountStatus(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[statusIn, *domain.Order]{
		Method: http.MethodPut,
		Path:   "/orders/:id/status",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p domain.Principal, in *statusIn) (*domain.Order, error) {
			return h.svc.UpdateStatus(c.Request.Context(), p, c.Param("id"), in.Status)
		},
	})
}
