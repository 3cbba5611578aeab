package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"logistics-service/internal/adapters/repositories"
	"logistics-service/internal/api/handlers"
	"logistics-service/internal/app"
	"logistics-service/internal/auth"
	"logistics-service/internal/config"
	"logistics-service/internal/platform/db"
)

var (
	dbDriver    string
	databaseURL string
	seedFile    string

	newUser  auth.Registration
	password string
)

var rootCmd = &cobra.Command{
	Use:           "dbtool",
	Short:         "Maintain the logistics database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *db.DB) error {
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return err
			}
			log.Println("Schema ready.")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into an empty database",
	Long: `Create the schema and load the fixture. Every record goes through the
same validation as API writes. A database that already holds routes is left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := repositories.ReadFixture(seedFile)
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), func(ctx context.Context, conn *db.DB) error {
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return err
			}
			report, err := repositories.Seed(ctx, repositories.NewStores(conn), fx)
			if err != nil {
				return err
			}
			if report.Skipped {
				log.Println("Database already seeded; nothing to do.")
				return nil
			}
			kinds := make([]string, 0, len(report.Counts))
			for k := range report.Counts {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				log.Printf("seeded %s=%d", k, report.Counts[k])
			}
			return nil
		})
	},
}

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a login for the back office and the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *db.DB) error {
			stores := repositories.NewStores(conn)
			reg := newUser
			reg.Password, reg.PasswordConfirm = password, password

			u, err := auth.NewAuthenticator(stores.Users, nil).Register(ctx, reg)
			if err != nil {
				return fmt.Errorf("createuser: %w", err)
			}
			log.Printf("created user id=%d username=%s staff=%t", u.UserID, u.Username, u.IsStaff)
			return nil
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the OpenAPI document as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(handlers.OpenAPIDocument("Logistics API", app.Version)); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", config.Get("DB_DRIVER", "sqlite"), "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", config.Get("DATABASE_URL", "data/app.db"), "SQLite path or PostgreSQL DSN")

	seedCmd.Flags().StringVar(&seedFile, "file", config.Get("SEED_PATH", "data/seeds/fleet.yaml"), "fixture to load")

	createUserCmd.Flags().StringVar(&newUser.Username, "username", "", "login name")
	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "email address")
	createUserCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "first name")
	createUserCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "last name")
	createUserCmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	createUserCmd.Flags().BoolVar(&newUser.IsStaff, "staff", false, "mark the account as staff")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(initCmd, seedCmd, createUserCmd, schemaCmd)
}

func withDB(ctx context.Context, fn func(context.Context, *db.DB) error) error {
	if strings.TrimSpace(databaseURL) == "" {
		return fmt.Errorf("a database is required (--database or DATABASE_URL)")
	}
	conn, err := db.Open(ctx, dbDriver, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, conn)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
