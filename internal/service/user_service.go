package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

const (
	minPasswordLen = 6
	// bcrypt 只接受 72 字节以内的口令
	maxPasswordBytes = 72
)

// TokenIssuer 由 auth.JWTer 实现
type TokenIssuer interface {
	Issue(uid string, role domain.Role) (string, error)
}

type UserService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens TokenIssuer, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.E(domain.KindInvalidInput, "invalid email")
	}
	return email, nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return domain.E(domain.KindInvalidInput, "password must be at least %d characters", minPasswordLen)
	}
	if len(pw) > maxPasswordBytes {
		return domain.E(domain.KindInvalidInput, "password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Register 自助注册一律为 customer
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Provision(ctx, email, password, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Provision 直接建号，storectl create-admin 也走这里
func (s *UserService) Provision(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	u := &domain.User{ID: utils.NewID(), Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr("create user", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Login 不区分"用户不存在"和"密码错误"
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := domain.E(domain.KindUnauthenticated, "invalid email or password")
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, invalid
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, invalid
		}
		return nil, storeErr("login", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, invalid
	}
	return s.issue(u)
}

func (s *UserService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &AuthResult{Token: tok, User: u}, nil
}

// Verify token 有效但用户已不存在时视为未认证
func (s *UserService) Verify(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.E(domain.KindUnauthenticated, "user no longer exists")
		}
		return nil, storeErr("verify", err)
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	return u, nil
}

type ProfileInput struct {
	Email    *string
	Password *string
}

func (s *UserService) UpdateProfile(ctx context.Context, p domain.Principal, in ProfileInput) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	var email, hash *string
	if in.Email != nil {
		e, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email = &e
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		h, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, domain.Internal("hash password", err)
		}
		hash = &h
	}
	u, err := s.users.UpdateProfile(ctx, p.UserID, email, hash)
	if err != nil {
		return nil, storeErr("update profile", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, p domain.Principal, req domain.PageRequest) (domain.Page[domain.User], error) {
	var empty domain.Page[domain.User]
	if err := requireAdmin(p); err != nil {
		return empty, err
	}
	page, err := req.Normalize()
	if err != nil {
		return empty, err
	}
	users, total, err := s.users.List(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return empty, storeErr("list users", err)
	}
	return domain.NewPage(users, page, total), nil
}

// SetRole 新角色在用户下次拿 token 时生效
func (s *UserService) SetRole(ctx context.Context, p domain.Principal, id, role string) (*domain.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, domain.E(domain.KindInvalidInput, "unknown role %q", role)
	}
	u, err := s.users.UpdateRole(ctx, id, r)
	if err != nil {
		return nil, storeErr("set role", err)
	}
	s.log.Info("user role changed", zap.String("user_id", id), zap.String("role", role), zap.String("by", p.UserID))
	return u, nil
}

// TokenFor 为已有账号签发 token（运维用，不校验口令）
func (s *UserService) TokenFor(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", storeErr("find user", err)
	}
	res, err := s.issue(u)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}
