// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	appctx "metalstock/internal/core/context"
	"metalstock/internal/core/entity"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/auth"
	"metalstock/internal/domain/catalogs/company"
	"metalstock/internal/domain/catalogs/material"
	"metalstock/internal/domain/catalogs/servicerate"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/storage/postgres"
	"metalstock/internal/infrastructure/storage/postgres/auth_repo"
	"metalstock/internal/infrastructure/storage/postgres/catalog_repo"
	"metalstock/internal/infrastructure/storage/postgres/ledger_repo"
	"metalstock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("METALSTOCK_POSTGRES_DSN")
	if dbURL == "" {
		log.Fatal("METALSTOCK_POSTGRES_DSN environment variable is required")
	}

	if err := postgres.Migrate(ctx, dbURL); err != nil {
		log.Fatalw("failed to migrate database", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	admin, err := seedAdminUser(ctx, txManager)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		actorCtx := appctx.WithUser(ctx, &appctx.UserContext{
			UserID: admin.ID.String(),
			Email:  admin.Email,
			Name:   admin.Name,
			Role:   admin.Role,
		})
		if err := seedDemoData(actorCtx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager) (*auth.User, error) {
	email := getEnv("ADMIN_EMAIL", "admin@metalstock.local")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")
	name := getEnv("ADMIN_NAME", "Администратор")

	service := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		nil, // no tokens are issued here
		auth.DefaultServiceConfig(),
	)
	return service.EnsureAdmin(ctx, email, name, password)
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	log.Info("seeding demo data...")

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		return err
	}

	companies := company.NewService(catalog_repo.NewCompanyRepo(txManager), txManager, auditService)
	materials := material.NewService(catalog_repo.NewMaterialRepo(txManager), txManager, auditService)
	rates := servicerate.NewService(catalog_repo.NewServiceRateRepo(txManager), txManager, auditService)

	supplier := company.NewCompany("ООО «СтальТрейд»", company.TypeSupplier)
	client := company.NewCompany("АО «Металлоконструкции»", company.TypeBoth)
	for _, c := range []*company.Company{supplier, client} {
		if err := companies.Create(ctx, c); err != nil {
			return fmt.Errorf("create company %q: %w", c.Name, err)
		}
	}

	pipe := material.NewMaterial("Труба")
	sheet := material.NewMaterial("Лист")
	for _, m := range []*material.Material{pipe, sheet} {
		if err := materials.Create(ctx, m); err != nil {
			return fmt.Errorf("create material %q: %w", m.Name, err)
		}
	}

	for _, r := range []*servicerate.ServiceRate{
		servicerate.NewServiceRate("Резка", types.MustMoney("150.00"), "рез"),
		servicerate.NewServiceRate("Погрузка", types.MustMoney("500.00"), "т"),
	} {
		if err := rates.Create(ctx, r); err != nil {
			log.Warnw("failed to seed service rate", "name", r.Name, "error", err)
		}
	}

	positionRepo := ledger_repo.NewPositionRepo(txManager)
	ledgerService := ledger.NewService(ledger.ServiceConfig{
		Positions: positionRepo,
		Movements: ledger_repo.NewMovementRepo(txManager),
		Resolver:  ledger.NewResolver(positionRepo, txManager, auditService),
		TxManager: txManager,
		Recorder:  auditService,
	})

	movements := []ledger.MovementInput{
		{
			Key:       ledger.Key{CompanyID: supplier.ID, MaterialID: pipe.ID, Size: "530x6", Ownership: ledger.OwnershipOwn},
			Operation: entity.OperationIncome,
			Weight:    types.MustWeight("12.500"),
			Cost:      types.MustMoney("875000.00"),
			Note:      "Первичный приход",
		},
		{
			Key:       ledger.Key{CompanyID: client.ID, MaterialID: sheet.ID, Size: "10", Ownership: ledger.OwnershipClientStorage},
			Operation: entity.OperationIncome,
			Weight:    types.MustWeight("4.2"),
			Note:      "Принято на хранение",
		},
	}
	for _, in := range movements {
		if _, err := ledgerService.Record(ctx, in); err != nil {
			return fmt.Errorf("record movement: %w", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
