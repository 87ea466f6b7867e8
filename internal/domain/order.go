package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// 允许的状态流转：pending→shipped→delivered，pending→cancelled
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", E(KindInvalidInput, "unknown order status %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool { return len(transitions[s]) == 0 }

type Order struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    string          `gorm:"size:36;not null;index" json:"userId"`
	User      *User           `gorm:"foreignKey:UserID" json:"-"`
	Total     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem product_id 不建外键：商品可硬删除
type OrderItem struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string `gorm:"size:36;not null;index" json:"orderId"`
	ProductID string `gorm:"size:36;not null;index" json:"productId"`
	Quantity  int    `gorm:"not null;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	// Position 下单时的行号，读回明细按它排序
	Position int `gorm:"not null;default:0" json:"-"`
}

func (OrderItem) TableName() string { return "order_items" }

// ProductSnapshot 读取时的商品信息，不是下单时快照
type ProductSnapshot struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"imageUrl"`
}

type OrderItemView struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *ProductSnapshot `json:"product"`
}

type OrderDetail struct {
	Order
	Items []OrderItemView `json:"items"`
}

type ItemRequest struct {
	ProductID string
	Quantity  int
}

type OrderFilter struct {
	UserID string // 空表示不限用户（仅管理员）
	Status *OrderStatus
}

type OrderRepository interface {
	// Create 写入订单及 o.Items；调用方负责事务边界
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ItemViews(ctx context.Context, orderID string) ([]OrderItemView, error)
	List(ctx context.Context, f OrderFilter, page PageRequest) ([]Order, int64, error)
	// CompareAndSetStatus 仅当当前状态为 from 时更新，返回是否命中
	CompareAndSetStatus(ctx context.Context, id string, from, to OrderStatus) (bool, error)
}

type Repositories interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
}

// Store fn 内的仓储共享一个事务；fn 返回错误即整体回滚
type Store interface {
	Repositories
	Tx(ctx context.Context, fn func(r Repositories) error) error
}
