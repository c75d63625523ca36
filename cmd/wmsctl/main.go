// wmsctl herramienta de operación: migraciones de esquema, migración de banderas heredadas,
// verificación offline de pases y emisión de tokens de desarrollo.
//
// Uso:
//
//	wmsctl migrate up
//	wmsctl migrate down --steps 1
//	wmsctl migrate-flags --dry-run
//	wmsctl sequence seed-redis
//	wmsctl verify <token> [--at 2025-01-15T10:00:00Z]
//	wmsctl token --user <id> --role manager
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain/entity"
	"github.com/jhoicas/wms-core/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/wms-core/internal/infrastructure/redis"
	"github.com/jhoicas/wms-core/pkg/config"
	"github.com/jhoicas/wms-core/pkg/jwt"
	"github.com/jhoicas/wms-core/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wmsctl",
		Short:         "Operación del núcleo de almacén",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(migrateCmd(), migrateFlagsCmd(), sequenceCmd(), verifyCmd(), tokenCmd())
	return cmd
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "wmsctl", Output: os.Stderr})
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de esquema PostgreSQL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica todas las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
				return err
			}
			log.Info().Msg("migraciones aplicadas")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(cfg.DB.ConnectionString(), steps); err != nil {
				return err
			}
			log.Info().Int("steps", steps).Msg("migraciones revertidas")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Número de migraciones a revertir")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión del esquema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(cfg.DB.ConnectionString())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	})
	return cmd
}

func migrateFlagsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate-flags",
		Short: "Deduce las banderas repair/other de artículos heredados",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			allocator := sequence.NewAllocator(postgres.NewSequenceStore(pool), sequence.DefaultConfig(), log.Component("sequence"), nil)
			uc := ledger.NewUseCase(postgres.NewTxRunner(pool), postgres.NewInventoryItemRepository(pool),
				postgres.NewTransactionRepository(pool), allocator, nil, log.Component("ledger"), nil,
				ledger.Config{QueryTimeout: cfg.DB.QueryTimeout})

			operator := entity.Identity{ID: "wmsctl", Role: entity.RoleAdmin}
			changes, err := uc.BackfillLegacyFlags(ctx, operator, dryRun)
			for _, ch := range changes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", ch.ItemID, ch.Flags.Kind(), ch.Name)
			}
			if err != nil {
				return err
			}
			log.Info().Int("items", len(changes)).Bool("dry_run", dryRun).Msg("migración de banderas terminada")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Solo listar los cambios")
	return cmd
}

func sequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Contadores de numeración de documentos",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed-redis",
		Short: "Copia los contadores de PostgreSQL a Redis antes de usar SEQUENCE_BACKEND=redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			client, err := infraredis.NewClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			counters, err := sequence.CopyCounters(ctx, postgres.NewSequenceStore(pool), infraredis.NewSequenceStore(client, cfg.Redis.Prefix))
			for _, c := range counters {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", c.Key, c.Value)
			}
			if err != nil {
				return err
			}
			log.Info().Int("counters", len(counters)).Msg("contadores copiados a Redis")
			return nil
		},
	})
	return cmd
}

func verifyCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verifica offline el token QR de un pase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.GatePass.TokenSecret == "" {
				return fmt.Errorf("GATEPASS_TOKEN_SECRET es obligatorio")
			}
			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at debe ser RFC3339: %w", err)
				}
			}
			signer := jwt.NewGatePassSigner(cfg.GatePass.TokenSecret, cfg.GatePass.TokenIssuer)
			uc := gatepass.NewUseCase(nil, nil, nil, signer, nil, log.Component("gatepass"), nil, gatepass.Config{})
			v, err := uc.VerifyOffline(args[0], now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "number=%s verified=%t reason=%s\n", v.Number, v.Verified, v.Reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Instante de verificación (RFC3339); por defecto ahora")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		role   string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de acceso (entornos de desarrollo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.App.Env == "production" {
				return fmt.Errorf("token no disponible en production")
			}
			if !entity.ValidRole(role) {
				return fmt.Errorf("rol inválido %q", role)
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario")
	cmd.Flags().StringVar(&role, "role", entity.RoleStaff, "Rol: admin, manager, staff, viewer")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
