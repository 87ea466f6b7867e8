package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"go-gin-storefront/internal/app"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/repo"
	"go-gin-storefront/internal/service"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Storefront operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("CONFIG_PATH"), "config file (YAML)")

	boot := func(cmd *cobra.Command) (*app.App, func(), error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		// CLI 不需要启动时自动迁移
		cfg.DB.AutoMigrate = false
		log, cleanup := logger.FromConfig(cfg.Log)
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		return a, func() { a.Close(); cleanup() }, nil
	}

	root.AddCommand(
		migrateCmd(boot),
		seedCmd(boot),
		createAdminCmd(boot),
		issueTokenCmd(boot),
	)
	return root
}

type bootFunc func(cmd *cobra.Command) (*app.App, func(), error)

// storectl migrate
func migrateCmd(boot bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := boot(cmd)
			if err != nil {
				return err
			}
			defer done()
			if err := repo.Migrate(a.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
			return nil
		},
	}
}

var demoProducts = []struct {
	name, price string
	inStock     bool
}{
	{"Crochet Phone Case", "14.90", true},
	{"Wool Phone Sock", "9.50", true},
	{"Desk Lamp", "39.00", true},
	{"Linen Tote Bag", "24.00", true},
	{"Vintage Phone Stand", "19.99", false},
}

// storectl seed
func seedCmd(boot bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo products into an empty catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := boot(cmd)
			if err != nil {
				return err
			}
			defer done()
			return seed(cmd, a)
		},
	}
}

func seed(cmd *cobra.Command, a *app.App) error {
	ctx := cmd.Context()
	existing, err := a.Catalog.List(ctx, domain.ProductQuery{PageRequest: domain.PageRequest{PageSize: 1}})
	if err != nil {
		return err
	}
	if existing.TotalCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "catalog already has %d products, skipping\n", existing.TotalCount)
		return nil
	}
	// 种子数据以系统管理员身份写入
	system := domain.Principal{UserID: "storectl", Role: domain.RoleAdmin}
	for _, p := range demoProducts {
		inStock := p.inStock
		if _, err := a.Catalog.Create(ctx, system, service.ProductInput{
			Name:    p.name,
			Price:   decimal.RequireFromString(p.price),
			InStock: &inStock,
		}); err != nil {
			return fmt.Errorf("seed %q: %w", p.name, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(demoProducts))
	return nil
}

// storectl create-admin --email --password
func createAdminCmd(boot bootFunc) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := boot(cmd)
			if err != nil {
				return err
			}
			defer done()
			u, err := a.Users.Provision(cmd.Context(), email, password, domain.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// storectl issue-token --email
func issueTokenCmd(boot bootFunc) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := boot(cmd)
			if err != nil {
				return err
			}
			defer done()
			tok, err := a.Users.TokenFor(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
