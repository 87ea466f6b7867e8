package service

import (
	"strings"

	"go-gin-storefront/internal/domain"
)

func (s *ServiceSuite) TestRegisterLoginVerify() {
	res, err := s.users.Register(s.ctx, "  New@Example.com ", "hunter22")
	s.Require().NoError(err)
	s.Equal("new@example.com", res.User.Email)
	s.Equal(domain.RoleCustomer, res.User.Role)
	s.NotEmpty(res.Token)

	p, err := s.jwt.Resolve("Bearer " + res.Token)
	s.Require().NoError(err)
	s.Equal(res.User.ID, p.UserID)

	login, err := s.users.Login(s.ctx, "new@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(res.User.ID, login.User.ID)

	u, err := s.users.Verify(s.ctx, p)
	s.Require().NoError(err)
	s.Equal("new@example.com", u.Email)
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, err := s.users.Register(s.ctx, "u1@example.com", "whatever1")
	s.ErrorIs(err, domain.ErrConflict)
	_, err = s.users.Register(s.ctx, "not-an-email", "whatever1")
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.users.Register(s.ctx, "short@example.com", "123")
	s.ErrorIs(err, domain.ErrInvalidInput)

	// 超过 bcrypt 上限是输入错误，不是内部错误
	_, err = s.users.Register(s.ctx, "long@example.com", strings.Repeat("a", 73))
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.users.Register(s.ctx, "edge@example.com", strings.Repeat("a", 72))
	s.NoError(err)
}

func (s *ServiceSuite) TestLoginFailuresAreIndistinguishable() {
	_, errWrongPw := s.users.Login(s.ctx, "u1@example.com", "wrong-password")
	_, errNoUser := s.users.Login(s.ctx, "ghost@example.com", "secret123")
	s.ErrorIs(errWrongPw, domain.ErrUnauthenticated)
	s.ErrorIs(errNoUser, domain.ErrUnauthenticated)
	s.Equal(errWrongPw.Error(), errNoUser.Error())
}

func (s *ServiceSuite) TestVerifyUnknownUser() {
	_, err := s.users.Verify(s.ctx, domain.Principal{UserID: "gone", Role: domain.RoleCustomer})
	s.ErrorIs(err, domain.ErrUnauthenticated)
}

func (s *ServiceSuite) TestUpdateProfile() {
	email := "renamed@example.com"
	pw := "brand-new-pw"
	u, err := s.users.UpdateProfile(s.ctx, s.customer, ProfileInput{Email: &email, Password: &pw})
	s.Require().NoError(err)
	s.Equal(email, u.Email)

	_, err = s.users.Login(s.ctx, email, pw)
	s.NoError(err)

	taken := "u2@example.com"
	_, err = s.users.UpdateProfile(s.ctx, s.customer, ProfileInput{Email: &taken})
	s.ErrorIs(err, domain.ErrConflict)

	short := "x"
	_, err = s.users.UpdateProfile(s.ctx, s.customer, ProfileInput{Password: &short})
	s.ErrorIs(err, domain.ErrInvalidInput)

	long := strings.Repeat("密", 25) // 75 字节
	_, err = s.users.UpdateProfile(s.ctx, s.customer, ProfileInput{Password: &long})
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *ServiceSuite) TestTokenForNormalizesEmail() {
	tok, err := s.users.TokenFor(s.ctx, "  Admin@Example.COM ")
	s.Require().NoError(err)
	p, err := s.jwt.Resolve("Bearer " + tok)
	s.Require().NoError(err)
	s.Equal(s.admin, p)

	_, err = s.users.TokenFor(s.ctx, "ghost@example.com")
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.users.TokenFor(s.ctx, "not-an-email")
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *ServiceSuite) TestAdminUserManagement() {
	page, err := s.users.List(s.ctx, s.admin, domain.PageRequest{Page: 1, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), page.TotalCount)
	s.Len(page.Items, 2)
	s.Equal(2, page.TotalPages)

	_, err = s.users.List(s.ctx, s.customer, domain.PageRequest{})
	s.ErrorIs(err, domain.ErrForbidden)

	u, err := s.users.SetRole(s.ctx, s.admin, s.other.UserID, "admin")
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, u.Role)

	_, err = s.users.SetRole(s.ctx, s.admin, s.other.UserID, "superuser")
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.users.SetRole(s.ctx, s.admin, "missing", "admin")
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.users.SetRole(s.ctx, s.customer, s.other.UserID, "admin")
	s.ErrorIs(err, domain.ErrForbidden)
}
