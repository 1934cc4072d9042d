//go:build integration

package dao

// Runs the store suite against a real postgres via testcontainers.
// Run with: go test -tags integration ./dao/...

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func init() {
	factories["postgres"] = postgresFactory
}

func postgresFactory(t *testing.T) (ContactDao, func()) {
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("contacts_test"),
		tcPostgres.WithUsername("contacts"),
		tcPostgres.WithPassword("contacts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := OpenGorm(DriverPostgres, dsn, 5, 2)
	require.NoError(t, err)

	return NewGormContactDao(db), func() {
		_ = CloseGorm(db)
		_ = pgC.Terminate(ctx)
	}
}
