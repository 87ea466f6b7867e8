package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description *string         `gorm:"size:1000" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL    *string         `gorm:"column:image_url;size:500" json:"imageUrl"`
	InStock     bool            `gorm:"not null;index" json:"inStock"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	// SearchName 名称的小写形式，由仓储写入；SQLite 的 LOWER 只处理 ASCII
	SearchName string `gorm:"size:255;not null;default:'';index" json:"-"`
}

func (Product) TableName() string { return "products" }

// SortField 可排序字段白名单；列名只来自这里，绝不拼接调用方字符串
type SortField int

const (
	SortByCreatedAt SortField = iota
	SortByName
	SortByPrice
)

func ParseSortField(s string) (SortField, error) {
	switch s {
	case "", "createdAt", "created_at":
		return SortByCreatedAt, nil
	case "name":
		return SortByName, nil
	case "price":
		return SortByPrice, nil
	}
	return 0, E(KindInvalidInput, "unsupported sortBy %q", s)
}

func (f SortField) Column() string {
	switch f {
	case SortByName:
		return "name"
	case SortByPrice:
		return "price"
	default:
		return "created_at"
	}
}

type SortDirection int

const (
	SortDesc SortDirection = iota
	SortAsc
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	}
	return 0, E(KindInvalidInput, "unsupported sortOrder %q", s)
}

// ProductFilter 列表与计数共用的过滤条件
type ProductFilter struct {
	Search  string
	InStock *bool
}

type ProductQuery struct {
	ProductFilter
	SortField     SortField
	SortDirection SortDirection
	PageRequest
}

// ProductPatch 管理端局部更新，nil 字段不改
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	InStock     *bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	Search(ctx context.Context, q ProductQuery) ([]Product, int64, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id string) error
}
