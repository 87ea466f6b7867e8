package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/cache"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 1000
)

// CatalogService 商品查询与后台维护；cache 可为 nil
type CatalogService struct {
	products domain.ProductRepository
	cache    *cache.Cache
	ttl      time.Duration
	log      *zap.Logger
}

func NewCatalogService(products domain.ProductRepository, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, cache: c, ttl: ttl, log: log}
}

func productKey(id string) string { return "product:" + id }

// List 计数和分页共用同一组过滤条件
func (s *CatalogService) List(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	page, err := q.PageRequest.Normalize()
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	q.PageRequest = page
	q.Search = strings.TrimSpace(q.Search)

	items, total, err := s.products.Search(ctx, q)
	if err != nil {
		return domain.Page[domain.Product]{}, storeErr("list products", err)
	}
	return domain.NewPage(items, page, total), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := cache.GetOrLoadJSON(s.cache, ctx, productKey(id), s.ttl, func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if p == nil {
		return nil, domain.E(domain.KindNotFound, "product not found")
	}
	return p, nil
}

type ProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	ImageURL    *string
	InStock     *bool
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLen {
		return domain.E(domain.KindInvalidInput, "name must be 1..%d characters", maxNameLen)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.E(domain.KindInvalidInput, "price must be >= 0")
	}
	if !price.Equal(price.Round(2)) {
		return domain.E(domain.KindInvalidInput, "price must have at most 2 decimal places")
	}
	return nil
}

func validateDescription(d *string) error {
	if d != nil && len(*d) > maxDescriptionLen {
		return domain.E(domain.KindInvalidInput, "description must not exceed %d characters", maxDescriptionLen)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, p domain.Principal, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	prod := &domain.Product{
		ID:          utils.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		InStock:     true,
	}
	if in.InStock != nil {
		prod.InStock = *in.InStock
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, storeErr("create product", err)
	}
	s.log.Info("product created", zap.String("product_id", prod.ID), zap.String("by", p.UserID))
	return prod, nil
}

func (s *CatalogService) Update(ctx context.Context, p domain.Principal, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if err := validateDescription(patch.Description); err != nil {
		return nil, err
	}
	prod, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr("update product", err)
	}
	s.invalidate(ctx, id)
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return storeErr("delete product", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("product deleted", zap.String("product_id", id), zap.String("by", p.UserID))
	return nil
}

// invalidate 失败只记日志，缓存最多旧一个 TTL
func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productKey(id)); err != nil {
		productCacheInvalidations.WithLabelValues("error").Inc()
		s.log.Warn("product cache invalidate failed", zap.String("product_id", id), zap.Error(err))
		return
	}
	productCacheInvalidations.WithLabelValues("ok").Inc()
}
