package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-gin-storefront/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func (s *ServiceSuite) seedPhones() {
	for i := 0; i < 12; i++ {
		s.product(fmt.Sprintf("Phone %02d", i), fmt.Sprintf("%d.00", 100+i), true)
	}
	s.product("Phone out of stock", "50.00", false)
	s.product("Laptop", "900.00", true)
}

func (s *ServiceSuite) TestListPaginatesMatchingInStockProducts() {
	s.seedPhones()
	q := domain.ProductQuery{
		ProductFilter: domain.ProductFilter{Search: "phone", InStock: boolPtr(true)},
		PageRequest:   domain.PageRequest{Page: 1, PageSize: 5},
	}

	page, err := s.catalog.List(s.ctx, q)
	s.Require().NoError(err)
	s.Len(page.Items, 5)
	s.Equal(int64(12), page.TotalCount)
	s.Equal(3, page.TotalPages)

	q.Page = 3
	last, err := s.catalog.List(s.ctx, q)
	s.Require().NoError(err)
	s.Len(last.Items, 2)

	q.Page = 4
	beyond, err := s.catalog.List(s.ctx, q)
	s.Require().NoError(err)
	s.NotNil(beyond.Items)
	s.Empty(beyond.Items)
	s.Equal(int64(12), beyond.TotalCount)
}

func (s *ServiceSuite) TestListIsIdempotent() {
	s.seedPhones()
	q := domain.ProductQuery{
		ProductFilter: domain.ProductFilter{Search: "PHONE"},
		SortField:     domain.SortByPrice,
		SortDirection: domain.SortAsc,
		PageRequest:   domain.PageRequest{Page: 2, PageSize: 4},
	}
	a, err := s.catalog.List(s.ctx, q)
	s.Require().NoError(err)
	b, err := s.catalog.List(s.ctx, q)
	s.Require().NoError(err)

	ids := func(p domain.Page[domain.Product]) []string {
		out := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			out = append(out, it.ID)
		}
		return out
	}
	s.Equal(ids(a), ids(b))
	s.Equal(int64(13), a.TotalCount)
}

func (s *ServiceSuite) TestListSortsByNameBothDirections() {
	s.product("b", "1.00", true)
	s.product("c", "1.00", true)
	s.product("a", "1.00", true)

	names := func(dir domain.SortDirection) []string {
		page, err := s.catalog.List(s.ctx, domain.ProductQuery{SortField: domain.SortByName, SortDirection: dir})
		s.Require().NoError(err)
		out := []string{}
		for _, p := range page.Items {
			out = append(out, p.Name)
		}
		return out
	}
	s.Equal([]string{"a", "b", "c"}, names(domain.SortAsc))
	s.Equal([]string{"c", "b", "a"}, names(domain.SortDesc))
}

func (s *ServiceSuite) TestListDefaultsAndCaps() {
	s.seedPhones()
	page, err := s.catalog.List(s.ctx, domain.ProductQuery{})
	s.Require().NoError(err)
	s.Equal(1, page.Page)
	s.Equal(domain.DefaultPageSize, page.PageSize)
	s.Len(page.Items, 10)
	s.Equal(2, page.TotalPages)

	page, err = s.catalog.List(s.ctx, domain.ProductQuery{PageRequest: domain.PageRequest{PageSize: 1000}})
	s.Require().NoError(err)
	s.Equal(domain.MaxPageSize, page.PageSize)

	_, err = s.catalog.List(s.ctx, domain.ProductQuery{PageRequest: domain.PageRequest{PageSize: -5}})
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *ServiceSuite) TestProductAdminWrites() {
	p := s.product("phone", "10.00", true)

	_, err := s.catalog.Create(s.ctx, s.customer, ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	s.ErrorIs(err, domain.ErrForbidden)
	_, err = s.catalog.Create(s.ctx, s.admin, ProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.catalog.Create(s.ctx, s.admin, ProductInput{Name: "x", Price: decimal.RequireFromString("1.234")})
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.catalog.Create(s.ctx, s.admin, ProductInput{Name: "  ", Price: decimal.NewFromInt(1)})
	s.ErrorIs(err, domain.ErrInvalidInput)

	name := "smart phone"
	price := decimal.RequireFromString("12.50")
	got, err := s.catalog.Update(s.ctx, s.admin, p.ID, domain.ProductPatch{Name: &name, Price: &price, InStock: boolPtr(false)})
	s.Require().NoError(err)
	s.Equal("smart phone", got.Name)
	s.True(price.Equal(got.Price))
	s.False(got.InStock)

	_, err = s.catalog.Update(s.ctx, s.admin, "missing", domain.ProductPatch{Name: &name})
	s.ErrorIs(err, domain.ErrNotFound)

	s.Require().NoError(s.catalog.Delete(s.ctx, s.admin, p.ID))
	_, err = s.catalog.Get(s.ctx, p.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(s.catalog.Delete(s.ctx, s.admin, p.ID), domain.ErrNotFound)
}
