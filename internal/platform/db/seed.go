package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"flm/internal/domain/auth"
	"flm/internal/domain/settings"
	"flm/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	return ensureSystemConfig(ctx, pool)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (code) VALUES ($1) ON CONFLICT (code) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, code FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, code string
		if err := rows.Scan(&id, &code); err != nil {
			return err
		}
		permMap[code] = id
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permCode := range perms {
			permID, ok := permMap[permCode]
			if !ok {
				return errors.New("permission not found: " + permCode)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role_id, status) VALUES ($1, $2, $3, $4) RETURNING id",
		email, hash, roleID, auth.UserStatusActive).Scan(&id)
}

// ensureSystemConfig installs the default classification thresholds and
// billing settings without overwriting operator changes.
func ensureSystemConfig(ctx context.Context, pool *pgxpool.Pool) error {
	tierJSON, err := settings.EncodeTierCutoffs(settings.DefaultTierCutoffs())
	if err != nil {
		return err
	}
	gradeJSON, err := settings.EncodeGradeCutoffs(settings.DefaultGradeCutoffs())
	if err != nil {
		return err
	}

	defaults := []struct {
		key, value, description string
	}{
		{settings.KeyTierThresholds, tierJSON, "Minimum average score per tier"},
		{settings.KeyGradeThresholds, gradeJSON, "Minimum consistency per grade"},
		{settings.KeyCurrency, "USD", "Payment currency"},
	}
	for _, d := range defaults {
		_, err := pool.Exec(ctx, `
			INSERT INTO system_config (key, value, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING`,
			d.key, d.value, d.description)
		if err != nil {
			return err
		}
	}
	return nil
}
