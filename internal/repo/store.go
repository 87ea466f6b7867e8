package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
)

// Store 聚合各仓储；Tx 内新建的仓储绑定同一个 *gorm.DB 事务句柄
type Store struct {
	db       *gorm.DB
	users    *UserRepo
	products *ProductRepo
	orders   *OrderRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		users:    NewUserRepo(db),
		products: NewProductRepo(db),
		orders:   NewOrderRepo(db),
	}
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Products() domain.ProductRepository { return s.products }
func (s *Store) Orders() domain.OrderRepository     { return s.orders }

func (s *Store) Tx(ctx context.Context, fn func(r domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Migrate 建表（幂等）
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
	); err != nil {
		return err
	}
	return backfillSearchName(db)
}

// backfillSearchName 补齐加列之前写入的商品
func backfillSearchName(db *gorm.DB) error {
	var rows []domain.Product
	if err := db.Select("id", "name").Where("search_name = '' AND name <> ''").Find(&rows).Error; err != nil {
		return fmt.Errorf("load products for backfill: %w", err)
	}
	for _, p := range rows {
		if err := db.Model(&domain.Product{}).Where("id = ?", p.ID).Update("search_name", searchName(p.Name)).Error; err != nil {
			return fmt.Errorf("backfill search_name: %w", err)
		}
	}
	return nil
}
