package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-gin-storefront/internal/domain"
)

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"` // customer / admin
	jwt.RegisteredClaims
}

// Resolver 从 Authorization 头解析出调用者
type Resolver interface {
	Resolve(authHeader string) (domain.Principal, error)
}

// JWTer 进程启动时创建，之后只读
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
	// Now 测试可替换，默认 time.Now
	Now func() time.Time
}

func New(secret, issuer string, ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte(secret), Issuer: issuer, TTL: ttl, Leeway: 60 * time.Second}
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(uid string, role domain.Role) (string, error) {
	now := j.now()
	claims := Claims{
		UID:  uid,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

const bearer = "Bearer "

// Resolve 只信任签名过的 claims，不回表查角色
func (j *JWTer) Resolve(authHeader string) (domain.Principal, error) {
	if !strings.HasPrefix(authHeader, bearer) {
		return domain.Principal{}, domain.E(domain.KindUnauthenticated, "missing bearer token")
	}
	raw := strings.TrimSpace(authHeader[len(bearer):])
	if raw == "" {
		return domain.Principal{}, domain.E(domain.KindUnauthenticated, "missing bearer token")
	}
	c, err := j.Parse(raw)
	if err != nil {
		return domain.Principal{}, &domain.Error{Kind: domain.KindUnauthenticated, Msg: "invalid token", Err: err}
	}
	role, ok := domain.ParseRole(c.Role)
	if !ok || c.UID == "" {
		return domain.Principal{}, domain.E(domain.KindUnauthenticated, "invalid token claims")
	}
	return domain.Principal{UserID: c.UID, Role: role}, nil
}
