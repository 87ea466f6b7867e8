package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-storefront/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// filterScope 列表和计数共用同一谓词，保证 totalCount 与结果一致
func filterScope(f domain.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(f.Search); s != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
			q = q.Where("search_name LIKE ? ESCAPE '!'", pattern)
		}
		if f.InStock != nil {
			q = q.Where("in_stock = ?", *f.InStock)
		}
		return q
	}
}

// searchName 在 Go 侧折叠大小写，各驱动行为一致
func searchName(name string) string { return strings.ToLower(name) }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.SearchName = searchName(p.Name)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var ps []domain.Product
	if len(ids) == 0 {
		return ps, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return ps, nil
}

func (r *ProductRepo) Search(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(filterScope(q.ProductFilter))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	desc := q.SortDirection == domain.SortDesc
	var items []domain.Product
	err := base.Session(&gorm.Session{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortField.Column()}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return items, total, nil
}

func (r *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	cols := map[string]any{}
	if patch.Name != nil {
		cols["name"] = *patch.Name
		cols["search_name"] = searchName(*patch.Name)
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	if patch.Price != nil {
		cols["price"] = *patch.Price
	}
	if patch.ImageURL != nil {
		cols["image_url"] = *patch.ImageURL
	}
	if patch.InStock != nil {
		cols["in_stock"] = *patch.InStock
	}
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("update product: %w", res.Error)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.E(domain.KindNotFound, "product not found")
	}
	return nil
}
