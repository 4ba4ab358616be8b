// Command nichifierctl runs one-off maintenance tasks against the database.
//
//	nichifierctl init-db
//	nichifierctl promote-user -email someone@example.com -role niche_admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nichifier-service/internal/config"
	"nichifier-service/internal/db"
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/repository/postgres"
	authUsecase "nichifier-service/internal/service/auth"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: nichifierctl <init-db|promote-user> [flags]")
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "init-db":
		err = initDB(ctx, cfg, logger)
	case "promote-user":
		err = promoteUser(ctx, cfg, os.Args[2:], logger)
	default:
		usage()
	}
	if err != nil {
		logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func initDB(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	pool, err := db.ConnectDB(db.PostgresConfig{URL: cfg.DatabaseURL, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.InitSchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func promoteUser(ctx context.Context, cfg config.AppConfig, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("promote-user", flag.ExitOnError)
	email := fs.String("email", "", "email of the user to promote")
	role := fs.String("role", string(auth.RoleNicheAdmin), "admin, niche_admin or subscriber")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return fmt.Errorf("-email is required")
	}

	pool, err := db.ConnectDB(db.PostgresConfig{URL: cfg.DatabaseURL, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	// Promotion only touches the user table, so the token and plan collaborators stay unset.
	svc := authUsecase.NewAuthService(postgres.NewUserRepository(pool), nil, nil, nil, nil, logger)
	user, err := svc.PromoteUser(ctx, &auth.PromoteRequest{Email: *email, Role: auth.Role(*role)})
	if err != nil {
		return err
	}
	logger.Info("user promoted",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("is_premium", user.IsPremium),
	)
	return nil
}
