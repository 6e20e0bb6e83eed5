package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/auth"
)

type defaultUser struct {
	name       string
	email      string
	password   string
	role       models.Role
	department string
}

var defaultUsers = []defaultUser{
	{
		name:       "Demo Faculty",
		email:      "faculty@urcp.app",
		password:   "Faculty123!",
		role:       models.RoleFaculty,
		department: "Computer Engineering",
	},
	{
		name:       "Demo Student",
		email:      "student@urcp.app",
		password:   "Student123!",
		role:       models.RoleStudent,
		department: "Computer Engineering",
	},
}

// CreateDefaultData inserts demo accounts and a sample project when the
// database is empty. Safe to call on every startup.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	var userCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		lgr.Debug().Msg("Users already exist, skipping default data creation")
		return nil
	}

	lgr.Info().Msg("Creating default data...")

	ids := make(map[string]int64)
	for _, u := range defaultUsers {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		var id int64
		err = pool.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, role, department, theme)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			u.name, u.email, hash, u.role, u.department, models.ThemeLight,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.email, err)
		}
		ids[u.email] = id
		lgr.Info().Str("email", u.email).Str("role", string(u.role)).Msg("Default user created")
	}

	var projectID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, department, status, initiator_id, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		"Campus Air Quality Monitoring",
		"Build a network of low-cost sensors across campus and publish live air quality data.",
		"Computer Engineering",
		models.StatusProposed,
		ids["student@urcp.app"],
		[]string{"iot", "sensors", "environment"},
	).Scan(&projectID)
	if err != nil {
		return fmt.Errorf("failed to insert sample project: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO project_open_roles (project_id, position, title, description)
		VALUES ($1, 0, $2, $3)`,
		projectID, "Data Engineer", "Design the ingestion pipeline for sensor readings.",
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample open role: %w", err)
	}

	lgr.Info().Int64("projectId", projectID).Msg("Sample project created")
	return nil
}
