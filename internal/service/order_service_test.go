package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-gin-storefront/internal/domain"
)

func (s *ServiceSuite) TestCreateOrderWritesOrderAndAllItems() {
	p1 := s.product("phone", "100.00", true)
	p2 := s.product("case", "9.99", true)

	o := s.placeOrder(s.customer,
		domain.ItemRequest{ProductID: p1.ID, Quantity: 2},
		domain.ItemRequest{ProductID: p2.ID, Quantity: 3},
	)

	s.Equal(domain.OrderPending, o.Status)
	s.Equal(s.customer.UserID, o.UserID)
	s.Len(o.Items, 2)
	s.True(decimal.RequireFromString("229.97").Equal(o.Total), o.Total.String())
	s.Equal(int64(1), s.count(&domain.Order{}))
	s.Equal(int64(2), s.count(&domain.OrderItem{}))
}

func (s *ServiceSuite) TestCreateOrderWithMissingProductWritesNothing() {
	p1 := s.product("phone", "100.00", true)

	_, err := s.orders.Create(s.ctx, s.customer, CreateOrderInput{Items: []domain.ItemRequest{
		{ProductID: p1.ID, Quantity: 1},
		{ProductID: "00000000-0000-0000-0000-000000000000", Quantity: 1},
	}})

	s.ErrorIs(err, domain.ErrNotFound)
	s.Zero(s.count(&domain.Order{}))
	s.Zero(s.count(&domain.OrderItem{}))
}

func (s *ServiceSuite) TestCreateOrderRejectsBadInput() {
	p1 := s.product("phone", "100.00", true)
	cases := map[string][]domain.ItemRequest{
		"empty":         nil,
		"zero quantity": {{ProductID: p1.ID, Quantity: 0}},
		"negative":      {{ProductID: p1.ID, Quantity: -1}},
		"no product":    {{Quantity: 1}},
	}
	for name, items := range cases {
		s.Run(name, func() {
			_, err := s.orders.Create(s.ctx, s.customer, CreateOrderInput{Items: items})
			s.ErrorIs(err, domain.ErrInvalidInput)
		})
	}
	s.Zero(s.count(&domain.Order{}))

	_, err := s.orders.Create(s.ctx, domain.Principal{}, CreateOrderInput{Items: []domain.ItemRequest{{ProductID: p1.ID, Quantity: 1}}})
	s.ErrorIs(err, domain.ErrUnauthenticated)
}

func (s *ServiceSuite) TestCreateOrderServerPolicyIgnoresClientTotal() {
	p1 := s.product("phone", "100.00", true)
	bogus := decimal.RequireFromString("0.01")
	o, err := s.orders.Create(s.ctx, s.customer, CreateOrderInput{
		Items: []domain.ItemRequest{{ProductID: p1.ID, Quantity: 2}},
		Total: &bogus,
	})
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("200").Equal(o.Total))
}

func (s *ServiceSuite) TestCreateOrderClientPolicyStoresSuppliedTotal() {
	svc := NewOrderService(s.store, s.orders.log, OrderOptions{TotalPolicy: TotalPolicyClient})
	p1 := s.product("phone", "100.00", true)

	_, err := svc.Create(s.ctx, s.customer, CreateOrderInput{Items: []domain.ItemRequest{{ProductID: p1.ID, Quantity: 2}}})
	s.ErrorIs(err, domain.ErrInvalidInput)

	total := decimal.RequireFromString("200.00")
	o, err := svc.Create(s.ctx, s.customer, CreateOrderInput{
		Items: []domain.ItemRequest{{ProductID: p1.ID, Quantity: 2}},
		Total: &total,
	})
	s.Require().NoError(err)
	s.True(total.Equal(o.Total))
}

func (s *ServiceSuite) TestCreateThenGetReturnsSameOrder() {
	p1 := s.product("phone", "100.00", true)
	o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 2})

	got, err := s.orders.Get(s.ctx, s.customer, o.ID)
	s.Require().NoError(err)
	s.Equal(o.ID, got.ID)
	s.Equal(s.customer.UserID, got.UserID)
	s.Equal(domain.OrderPending, got.Status)
	s.Require().Len(got.Items, 1)
	s.Equal(p1.ID, got.Items[0].ProductID)
	s.Equal(2, got.Items[0].Quantity)
	s.Require().NotNil(got.Items[0].Product)
	s.Equal("phone", got.Items[0].Product.Name)
}

func (s *ServiceSuite) TestForeignOrdersAreNeverExposed() {
	p1 := s.product("phone", "100.00", true)
	mine := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})
	theirs := s.placeOrder(s.other, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})

	_, err := s.orders.Get(s.ctx, s.customer, theirs.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	page, err := s.orders.List(s.ctx, s.customer, ListOrdersInput{})
	s.Require().NoError(err)
	s.Equal(int64(1), page.TotalCount)
	s.Require().Len(page.Items, 1)
	s.Equal(mine.ID, page.Items[0].ID)

	// 管理员看全部
	all, err := s.orders.List(s.ctx, s.admin, ListOrdersInput{})
	s.Require().NoError(err)
	s.Equal(int64(2), all.TotalCount)
	_, err = s.orders.Get(s.ctx, s.admin, theirs.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestForeignOrderForbiddenWhenNotHidden() {
	svc := NewOrderService(s.store, s.orders.log, OrderOptions{HideForeign: false})
	p1 := s.product("phone", "100.00", true)
	theirs := s.placeOrder(s.other, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})

	_, err := svc.Get(s.ctx, s.customer, theirs.ID)
	s.ErrorIs(err, domain.ErrForbidden)
	_, err = svc.Get(s.ctx, s.customer, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceSuite) TestListOrdersStatusFilterAndOrdering() {
	p1 := s.product("phone", "100.00", true)
	first := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})
	second := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})
	_, err := s.orders.UpdateStatus(s.ctx, s.admin, first.ID, "shipped")
	s.Require().NoError(err)

	shipped, err := s.orders.List(s.ctx, s.admin, ListOrdersInput{Status: "shipped"})
	s.Require().NoError(err)
	s.Require().Len(shipped.Items, 1)
	s.Equal(first.ID, shipped.Items[0].ID)

	pending, err := s.orders.List(s.ctx, s.customer, ListOrdersInput{Status: "pending"})
	s.Require().NoError(err)
	s.Require().Len(pending.Items, 1)
	s.Equal(second.ID, pending.Items[0].ID)

	_, err = s.orders.List(s.ctx, s.admin, ListOrdersInput{Status: "lost"})
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.orders.List(s.ctx, s.admin, ListOrdersInput{PageRequest: domain.PageRequest{Page: -1}})
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *ServiceSuite) TestUpdateStatusFollowsTransitionTable() {
	p1 := s.product("phone", "100.00", true)
	all := []domain.OrderStatus{domain.OrderPending, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled}

	// 通过合法路径把订单推进到 from 状态
	path := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderPending:   nil,
		domain.OrderShipped:   {domain.OrderShipped},
		domain.OrderDelivered: {domain.OrderShipped, domain.OrderDelivered},
		domain.OrderCancelled: {domain.OrderCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})
			for _, step := range path[from] {
				_, err := s.orders.UpdateStatus(s.ctx, s.admin, o.ID, string(step))
				s.Require().NoError(err)
			}

			got, err := s.orders.UpdateStatus(s.ctx, s.admin, o.ID, string(to))
			persisted, ferr := s.store.Orders().FindByID(s.ctx, o.ID)
			s.Require().NoError(ferr)

			if from.CanTransitionTo(to) {
				s.Require().NoError(err, "%s -> %s", from, to)
				s.Equal(to, got.Status)
				s.Equal(to, persisted.Status)
			} else {
				s.ErrorIs(err, domain.ErrInvalidTransition, "%s -> %s", from, to)
				s.Equal(from, persisted.Status)
			}
		}
	}
}

func (s *ServiceSuite) TestDeliveredRequiresShipped() {
	p1 := s.product("phone", "100.00", true)
	o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})

	_, err := s.orders.UpdateStatus(s.ctx, s.admin, o.ID, "delivered")
	s.ErrorIs(err, domain.ErrInvalidTransition)

	_, err = s.orders.UpdateStatus(s.ctx, s.admin, o.ID, "shipped")
	s.Require().NoError(err)
	got, err := s.orders.UpdateStatus(s.ctx, s.admin, o.ID, "delivered")
	s.Require().NoError(err)
	s.Equal(domain.OrderDelivered, got.Status)
}

func (s *ServiceSuite) TestUpdateStatusErrors() {
	p1 := s.product("phone", "100.00", true)
	o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 1})

	_, err := s.orders.UpdateStatus(s.ctx, s.customer, o.ID, "shipped")
	s.ErrorIs(err, domain.ErrForbidden)
	_, err = s.orders.UpdateStatus(s.ctx, domain.Principal{}, o.ID, "shipped")
	s.ErrorIs(err, domain.ErrUnauthenticated)
	_, err = s.orders.UpdateStatus(s.ctx, s.admin, o.ID, "teleported")
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.orders.UpdateStatus(s.ctx, s.admin, "missing", "shipped")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceSuite) TestGetOrderKeepsItemsAfterProductDeleted() {
	p1 := s.product("phone", "100.00", true)
	o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: p1.ID, Quantity: 2})
	s.Require().NoError(s.catalog.Delete(s.ctx, s.admin, p1.ID))

	got, err := s.orders.Get(s.ctx, s.customer, o.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Items, 1)
	s.Nil(got.Items[0].Product)
	s.True(decimal.RequireFromString("200").Equal(got.Total))
}

// 角色变更只对新签发的 token 生效
func (s *ServiceSuite) TestRoleChangeAppliesToNewTokensOnly() {
	o := s.placeOrder(s.customer, domain.ItemRequest{ProductID: s.product("p", "1.00", true).ID, Quantity: 1})

	before, err := s.users.Login(s.ctx, "u2@example.com", "secret123")
	s.Require().NoError(err)
	_, err = s.users.SetRole(s.ctx, s.admin, s.other.UserID, "admin")
	s.Require().NoError(err)

	stale, err := s.jwt.Resolve("Bearer " + before.Token)
	s.Require().NoError(err)
	s.Equal(domain.RoleCustomer, stale.Role)
	_, err = s.orders.UpdateStatus(s.ctx, stale, o.ID, "shipped")
	s.ErrorIs(err, domain.ErrForbidden)

	after, err := s.users.Login(s.ctx, "u2@example.com", "secret123")
	s.Require().NoError(err)
	fresh, err := s.jwt.Resolve("Bearer " + after.Token)
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, fresh.Role)
	got, err := s.orders.UpdateStatus(s.ctx, fresh, o.ID, "shipped")
	s.Require().NoError(err)
	s.Equal(domain.OrderShipped, got.Status)
}

func (s *ServiceSuite) TestGetOrderKeepsSubmittedItemOrder() {
	items := make([]domain.ItemRequest, 0, 6)
	for q := 1; q <= 6; q++ {
		p := s.product(fmt.Sprintf("item-%d", q), "1.00", true)
		items = append(items, domain.ItemRequest{ProductID: p.ID, Quantity: q})
	}
	o := s.placeOrder(s.customer, items...)

	got, err := s.orders.Get(s.ctx, s.customer, o.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Items, 6)
	for i, it := range got.Items {
		s.Equal(items[i].ProductID, it.ProductID)
		s.Equal(i+1, it.Quantity)
	}
}
