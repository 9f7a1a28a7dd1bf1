// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/PraveenHasintha/inventra-backend/internal/config"
	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/auth_repo"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

type productSeed struct {
	sku     string
	name    string
	price   int64
	opening int64
}

var demoProducts = []productSeed{
	{"COLA-330", "Cola 330ml", 250, 48},
	{"WATER-500", "Still Water 500ml", 120, 96},
	{"CHIPS-SALT", "Salted Chips 150g", 399, 24},
	{"CHOC-BAR", "Milk Chocolate Bar", 180, 60},
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txm := postgres.NewTxManager(pool, postgres.DefaultTxOptions())
	s := &seeder{
		log:      log,
		catalogs: catalog_repo.NewRepo(txm),
		users:    auth_repo.NewUserRepo(txm),
		auth:     auth.NewService(auth_repo.NewUserRepo(txm), nil, auth.DefaultServiceConfig()),
	}
	stock := ledger_repo.NewStockRepo(txm)
	s.ledger = ledger.NewService(stock, s.catalogs, ledger.NewMutator(stock, txm), txm, ledger.DefaultPageConfig(), nil)

	adminID, err := s.user(ctx, getEnv("ADMIN_EMAIL", "admin@inventra.local"), getEnv("ADMIN_PASSWORD", "Admin123!"), "Store Admin", true, auth.RoleManager)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	if _, err := s.user(ctx, getEnv("CASHIER_EMAIL", "cashier@inventra.local"), getEnv("CASHIER_PASSWORD", "Cashier123!"), "Front Till", false, auth.RoleCashier); err != nil {
		log.Fatalw("failed to seed cashier user", "error", err)
	}

	if err := s.demo(ctx, adminID); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

type seeder struct {
	log      *logger.Logger
	catalogs *catalog_repo.Repo
	users    *auth_repo.UserRepo
	auth     *auth.Service
	ledger   *ledger.Service
}

func (s *seeder) user(ctx context.Context, email, password, fullName string, admin bool, role string) (id.ID, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.log.Infow("user already exists", "email", email, "user_id", existing.ID)
		return existing.ID, nil
	}
	if !apperror.IsNotFound(err) {
		return id.ID{}, fmt.Errorf("check user exists: %w", err)
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return id.ID{}, err
	}

	user := auth.NewUser(email, hash, fullName, role)
	user.IsAdmin = admin
	if err := s.users.Create(ctx, user); err != nil {
		return id.ID{}, err
	}

	s.log.Infow("user created", "email", email, "user_id", user.ID, "role", role)
	return user.ID, nil
}

// demo creates one branch and a few products with opening stock. Opening
// stock is only received when the product was newly created, so reruns are safe.
func (s *seeder) demo(ctx context.Context, actor id.ID) error {
	branch := &catalog.Branch{ID: id.New(), Code: "MAIN", Name: "Main Street", IsActive: true}
	if err := s.catalogs.CreateBranch(ctx, branch); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	for _, p := range demoProducts {
		product := &catalog.Product{ID: id.New(), SKU: p.sku, Name: p.name, SellingPrice: types.MinorUnits(p.price), IsActive: true}
		if err := s.catalogs.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("create product %s: %w", p.sku, err)
		}

		_, err := s.ledger.Receive(ctx, ledger.StockInput{
			BranchID:  branch.ID,
			ProductID: product.ID,
			Note:      "opening stock",
			ActorID:   actor,
		}, p.opening)
		switch {
		case apperror.IsNotFound(err):
			// Branch or product already existed under another id.
			s.log.Infow("skipping opening stock for existing record", "sku", p.sku)
		case err != nil:
			return fmt.Errorf("receive %s: %w", p.sku, err)
		default:
			s.log.Infow("product seeded", "sku", p.sku, "opening", p.opening)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
