// Package app 按配置组装三个二进制共用的依赖
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/cache"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/core/database"
	"go-gin-storefront/internal/repo"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/router"
)

type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Store   *repo.Store
	Cache   *cache.Cache // redis.addr 为空时为 nil
	JWT     *auth.JWTer
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Users   *service.UserService
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		// redis 只是加速，连不上照常启动
		if err := c.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, product cache degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	store := repo.NewStore(db)
	jwter := auth.New(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	return &App{
		Cfg:     cfg,
		Log:     log,
		DB:      db,
		Store:   store,
		Cache:   c,
		JWT:     jwter,
		Catalog: service.NewCatalogService(store.Products(), c, time.Duration(cfg.Redis.ProductTTLSec)*time.Second, log),
		Orders: service.NewOrderService(store, log, service.OrderOptions{
			TotalPolicy: cfg.Order.TotalPolicy,
			HideForeign: cfg.Order.HideForeign,
		}),
		Users: service.NewUserService(store.Users(), jwter, log),
	}, nil
}

func (a *App) RouterDeps() router.Deps {
	return router.Deps{
		Log:      a.Log,
		Limits:   a.Cfg.Limits,
		Resolver: a.JWT,
		Catalog:  a.Catalog,
		Orders:   a.Orders,
		Users:    a.Users,
	}
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("redis close", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
