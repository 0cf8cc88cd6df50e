package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/welcometomycity/citycore/internal/cache"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/db"
	"go.uber.org/zap"
)

const checkTimeout = 10 * time.Second

func seedCmd(s *state) *cobra.Command {
	var fixturesDir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load reference data into Postgres",
		Long: `seed applies the database schema and upserts cities, stations, bus routes and
curated places. Data comes from the embedded fixtures unless --from names a
directory holding cities.json, stations.json, buses.json and places.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			source, store, err := loadFixtures(fixturesDir)
			if err != nil {
				return fmt.Errorf("failed to load fixtures: %w", err)
			}

			pool, err := db.Connect(ctx, s.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			s.logger.Debug("schema applied")

			start := time.Now()
			stats, err := dataset.Seed(ctx, pool, store, source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Seed complete"))
			fmt.Fprintf(out, "%s %s\n", stats, mutedStyle.Render(fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturesDir, "from", "", "directory of JSON fixtures to seed instead of the embedded data")
	return cmd
}

// loadFixtures reads dir when set, otherwise the embedded fixtures
func loadFixtures(dir string) (string, *dataset.Store, error) {
	if dir == "" {
		store, err := dataset.LoadEmbedded()
		return "embedded", store, err
	}
	store, err := dataset.LoadFS(os.DirFS(dir), ".")
	return dir, store, err
}

func checkCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to Postgres and Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Connectivity"))

			var errs []error
			report := func(name string, err error, skipped string) {
				switch {
				case skipped != "":
					fmt.Fprintf(out, "• %s: %s\n", name, mutedStyle.Render(skipped))
				case err != nil:
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					fmt.Fprintf(out, "• %s: %s\n", name, warnStyle.Render(err.Error()))
				default:
					fmt.Fprintf(out, "• %s: %s\n", name, accentStyle.Render("ok"))
				}
			}

			if s.cfg.UsePostgres() {
				report("postgres", checkPostgres(ctx, s), "")
			} else {
				report("postgres", nil, "skipped (data source is embedded)")
			}

			if s.cfg.Redis.Enabled {
				report("redis", checkRedis(ctx, s), "")
			} else {
				report("redis", nil, "disabled (in-process cache)")
			}

			if s.cfg.Places.APIKey == "" {
				report("gemini", nil, "not configured")
			} else {
				report("gemini", nil, "key present, model "+s.cfg.Places.Model)
			}

			return errors.Join(errs...)
		},
	}
}

func checkPostgres(ctx context.Context, s *state) error {
	pool, err := db.Connect(ctx, s.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.HealthCheck(ctx, pool); err != nil {
		return err
	}
	stat := pool.Stat()
	s.logger.Debug("postgres pool", zap.Int32("total_conns", stat.TotalConns()))
	return nil
}

func checkRedis(ctx context.Context, s *state) error {
	rc, err := cache.NewRedisCache(ctx, s.cfg.Redis)
	if err != nil {
		return err
	}
	defer rc.Close()

	s.logger.Debug("redis pool", zap.Any("stats", rc.Stats()))
	return nil
}
