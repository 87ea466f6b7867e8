package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

const (
	TotalPolicyServer = "server"
	TotalPolicyClient = "client"
)

type OrderOptions struct {
	// TotalPolicy server 按商品现价重算；client 原样保存请求里的 total
	TotalPolicy string
	// HideForeign 非本人订单返回 NotFound，否则 Forbidden
	HideForeign bool
}

type OrderService struct {
	store domain.Store
	log   *zap.Logger
	opt   OrderOptions
}

func NewOrderService(store domain.Store, log *zap.Logger, opt OrderOptions) *OrderService {
	if opt.TotalPolicy == "" {
		opt.TotalPolicy = TotalPolicyServer
	}
	return &OrderService{store: store, log: log, opt: opt}
}

type CreateOrderInput struct {
	Items []domain.ItemRequest
	// Total 仅 client 策略使用
	Total *decimal.Decimal
}

func requireUser(p domain.Principal) error {
	if p.UserID == "" {
		return domain.E(domain.KindUnauthenticated, "authentication required")
	}
	return nil
}

func requireAdmin(p domain.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return domain.E(domain.KindForbidden, "admin role required")
	}
	return nil
}

func validateItems(items []domain.ItemRequest) error {
	if len(items) == 0 {
		return domain.E(domain.KindInvalidInput, "order must contain at least one item")
	}
	for i, it := range items {
		if it.ProductID == "" {
			return domain.E(domain.KindInvalidInput, "items[%d].productId is required", i)
		}
		if it.Quantity < 1 {
			return domain.E(domain.KindInvalidInput, "items[%d].quantity must be >= 1", i)
		}
	}
	return nil
}

// Create 订单头和全部明细在同一事务内写入，任一失败整体回滚
func (s *OrderService) Create(ctx context.Context, p domain.Principal, in CreateOrderInput) (*domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if s.opt.TotalPolicy == TotalPolicyClient {
		if in.Total == nil || in.Total.IsNegative() {
			return nil, domain.E(domain.KindInvalidInput, "total must be a non-negative number")
		}
	}

	var order *domain.Order
	err := s.store.Tx(ctx, func(r domain.Repositories) error {
		prices, err := loadPrices(ctx, r.Products(), in.Items)
		if err != nil {
			return err
		}

		o := &domain.Order{
			ID:     utils.NewID(),
			UserID: p.UserID,
			Status: domain.OrderPending,
			Items:  make([]domain.OrderItem, 0, len(in.Items)),
		}
		total := decimal.Zero
		for i, it := range in.Items {
			o.Items = append(o.Items, domain.OrderItem{
				ID:        utils.NewID(),
				OrderID:   o.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Position:  i,
			})
			total = total.Add(prices[it.ProductID].Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		o.Total = total.Round(2)
		if s.opt.TotalPolicy == TotalPolicyClient {
			o.Total = in.Total.Round(2)
		}

		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, storeErr("create order", err)
	}

	ordersCreated.Inc()
	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// loadPrices 校验引用的商品都存在，返回 id → 现价
func loadPrices(ctx context.Context, products domain.ProductRepository, items []domain.ItemRequest) (map[string]decimal.Decimal, error) {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(found))
	for _, p := range found {
		prices[p.ID] = p.Price
	}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, domain.E(domain.KindNotFound, "product %s not found", id)
		}
	}
	return prices, nil
}

type ListOrdersInput struct {
	Status string
	domain.PageRequest
}

// List 非管理员强制按本人过滤
func (s *OrderService) List(ctx context.Context, p domain.Principal, in ListOrdersInput) (domain.Page[domain.Order], error) {
	var empty domain.Page[domain.Order]
	if err := requireUser(p); err != nil {
		return empty, err
	}
	page, err := in.PageRequest.Normalize()
	if err != nil {
		return empty, err
	}
	var f domain.OrderFilter
	if !p.IsAdmin() {
		f.UserID = p.UserID
	}
	if in.Status != "" {
		st, err := domain.ParseOrderStatus(in.Status)
		if err != nil {
			return empty, err
		}
		f.Status = &st
	}

	orders, total, err := s.store.Orders().List(ctx, f, page)
	if err != nil {
		return empty, storeErr("list orders", err)
	}
	return domain.NewPage(orders, page, total), nil
}

func (s *OrderService) Get(ctx context.Context, p domain.Principal, id string) (*domain.OrderDetail, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	o, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if !p.CanSee(o) {
		if s.opt.HideForeign {
			return nil, domain.E(domain.KindNotFound, "order not found")
		}
		return nil, domain.E(domain.KindForbidden, "access denied")
	}
	items, err := s.store.Orders().ItemViews(ctx, o.ID)
	if err != nil {
		return nil, storeErr("get order items", err)
	}
	o.Items = nil
	return &domain.OrderDetail{Order: *o, Items: items}, nil
}

// UpdateStatus 用 CAS 落库：WHERE status = 读到的旧状态，并发改动时返回 Conflict
func (s *OrderService) UpdateStatus(ctx context.Context, p domain.Principal, id, status string) (*domain.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, domain.E(domain.KindInvalidTransition, "cannot change order status from %s to %s", o.Status, next)
	}
	ok, err := s.store.Orders().CompareAndSetStatus(ctx, o.ID, o.Status, next)
	if err != nil {
		return nil, storeErr("update order status", err)
	}
	if !ok {
		return nil, domain.E(domain.KindConflict, "order %s was modified concurrently", o.ID)
	}

	orderTransitions.WithLabelValues(string(next)).Inc()
	s.log.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
		zap.String("by", p.UserID),
	)
	o.Status = next
	return o, nil
}

// storeErr domain 错误原样返回，其余包装成 Internal，由传输层记录日志
func storeErr(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(op, err)
}
