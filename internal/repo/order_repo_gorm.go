package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create 订单与明细一并写入（明细按 CreateBatchSize 批量插入）
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if isFKViolation(err) {
			return domain.E(domain.KindNotFound, "referenced user or product not found")
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

type itemViewRow struct {
	ID        string              `gorm:"column:id"`
	ProductID string              `gorm:"column:product_id"`
	Quantity  int                 `gorm:"column:quantity"`
	PID       *string             `gorm:"column:p_id"`
	PName     *string             `gorm:"column:p_name"`
	PPrice    decimal.NullDecimal `gorm:"column:p_price"`
	PImageURL *string             `gorm:"column:p_image_url"`
}

func (r *OrderRepo) ItemViews(ctx context.Context, orderID string) ([]domain.OrderItemView, error) {
	var rows []itemViewRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.id, oi.product_id, oi.quantity, p.id AS p_id, p.name AS p_name, p.price AS p_price, p.image_url AS p_image_url").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.position, oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}

	out := make([]domain.OrderItemView, 0, len(rows))
	for _, row := range rows {
		v := domain.OrderItemView{ID: row.ID, ProductID: row.ProductID, Quantity: row.Quantity}
		// 商品被硬删除时 LEFT JOIN 为空
		if row.PID != nil {
			v.Product = &domain.ProductSnapshot{
				ID:       *row.PID,
				Price:    row.PPrice.Decimal,
				ImageURL: row.PImageURL,
			}
			if row.PName != nil {
				v.Product.Name = *row.PName
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter, page domain.PageRequest) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	var orders []domain.Order
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id DESC").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepo) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
