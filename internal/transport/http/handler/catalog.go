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

type CatalogHandler struct {
	svc *service.CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc *service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

func (h *CatalogHandler) Priority() int { return 10 }

type productListQuery struct {
	Search    string `form:"search"`
	InStock   *bool  `form:"inStock"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	PageQuery
}

// query sortBy/sortOrder 只能映射到枚举，不会拼进 SQL
func (q productListQuery) toDomain() (domain.ProductQuery, error) {
	field, err := domain.ParseSortField(q.SortBy)
	if err != nil {
		return domain.ProductQuery{}, err
	}
	dir, err := domain.ParseSortDirection(q.SortOrder)
	if err != nil {
		return domain.ProductQuery{}, err
	}
	page, err := q.request()
	if err != nil {
		return domain.ProductQuery{}, err
	}
	return domain.ProductQuery{
		ProductFilter: domain.ProductFilter{Search: q.Search, InStock: q.InStock},
		SortField:     field,
		SortDirection: dir,
		PageRequest:   page,
	}, nil
}

func (h *CatalogHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[productListQuery, domain.Page[domain.Product]]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ domain.Principal, in *productListQuery) (domain.Page[domain.Product], error) {
			q, err := in.toDomain()
			if err != nil {
				return domain.Page[domain.Product]{}, err
			}
			return h.svc.List(c.Request.Context(), q)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Principal, _ *struct{}) (*domain.Product, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
}

type productCreateIn struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	ImageURL    *string          `json:"imageUrl" binding:"omitempty,url"`
	InStock     *bool            `json:"inStock"`
}

type productUpdateIn struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl" binding:"omitempty,url"`
	InStock     *bool            `json:"inStock"`
}

// MountAdmin 分组已挂 RequireAdmin
func (h *CatalogHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[productCreateIn, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, p domain.Principal, in *productCreateIn) (*domain.Product, error) {
			return h.svc.Create(c.Request.Context(), p, service.ProductInput{
				Name:        in.Name,
				Description: in.Description,
				Price:       *in.Price,
				ImageURL:    in.ImageURL,
				InStock:     in.InStock,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[productUpdateIn, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p domain.Principal, in *productUpdateIn) (*domain.Product, error) {
			return h.svc.Update(c.Request.Context(), p, c.Param("id"), domain.ProductPatch{
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				ImageURL:    in.ImageURL,
				InStock:     in.InStock,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, p domain.Principal, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), p, id)
		},
	})
}
