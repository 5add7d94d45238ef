package main

import (
	"fmt"
	"os"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	demote      bool
)

var rootCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Grant or revoke the admin role for a user",
	Long: `promote-admin changes the role of an existing user. Roles cannot be
changed through the HTTP API, so this is the only way to create an admin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL not set and --database-url not given")
		}

		ctx := cmd.Context()

		db, err := database.New(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		role := models.RoleAdmin
		if demote {
			role = models.RoleUser
		}

		result, err := db.Pool.Exec(ctx, `UPDATE users SET role = $1 WHERE email = $2`, role, email)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("no user found with email: %s", email)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	rootCmd.Flags().BoolVar(&demote, "demote", false, "set the role back to user")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
