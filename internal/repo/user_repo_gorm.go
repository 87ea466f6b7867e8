package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.E(domain.KindConflict, "email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var users []domain.User
	base := r.db.WithContext(ctx).Model(&domain.User{})
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Offset(offset).Limit(limit).Order("created_at desc").Order("id").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, email, passwordHash *string) (*domain.User, error) {
	cols := map[string]any{}
	if email != nil {
		cols["email"] = *email
	}
	if passwordHash != nil {
		cols["password_hash"] = *passwordHash
	}
	return r.update(ctx, id, cols)
}

func (r *UserRepo) update(ctx context.Context, id string, cols map[string]any) (*domain.User, error) {
	db := r.db.WithContext(ctx)
	if len(cols) > 0 {
		res := db.Model(&domain.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			if isDupKey(res.Error) {
				return nil, domain.E(domain.KindConflict, "email already registered")
			}
			return nil, fmt.Errorf("update user: %w", res.Error)
		}
	}
	return r.FindByID(ctx, id)
}
