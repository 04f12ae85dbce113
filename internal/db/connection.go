package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/willibrandon/pgrestore/internal/logger"
	"github.com/willibrandon/pgrestore/internal/pgurl"
)

// pingTimeout bounds the preflight connection attempt.
const pingTimeout = 10 * time.Second

// ConnString renders desc as a postgres:// URL with the given sslmode.
func ConnString(desc pgurl.Descriptor, sslmode string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(desc.Host, strconv.Itoa(desc.Port)),
		Path:   "/" + desc.Database,
	}
	if desc.HasPassword {
		u.User = url.UserPassword(desc.User, desc.Password)
	} else if desc.User != "" {
		u.User = url.User(desc.User)
	}
	if sslmode != "" {
		u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
	}
	return u.String()
}

// Ping opens a single connection to the restore target and returns the
// server version. It is used as a preflight check before starting the
// restore client.
func Ping(ctx context.Context, desc pgurl.Descriptor, sslmode string) (string, error) {
	logger.Debug("Checking target database connection",
		"host", desc.Host,
		"port", desc.Port,
		"database", desc.Database,
		"user", desc.User,
		"sslmode", sslmode,
	)

	connConfig, err := pgx.ParseConfig(ConnString(desc, sslmode))
	if err != nil {
		logger.Error("Failed to parse connection string", "error", err)
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	connConfig.RuntimeParams["application_name"] = "pgrestore"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		logger.Error("Failed to connect to target database",
			"host", desc.Host,
			"port", desc.Port,
			"error", err,
		)
		return "", fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(context.Background())

	var version string
	if err := conn.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get PostgreSQL version: %w", err)
	}

	logger.Info("Target database reachable", "server_version", version)
	return version, nil
}
