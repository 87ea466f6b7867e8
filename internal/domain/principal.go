package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Principal 已认证的调用方（来自 token claims，不回查库）
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanSee 非管理员只能看到自己的订单
func (p Principal) CanSee(o *Order) bool {
	return p.IsAdmin() || o.UserID == p.UserID
}
