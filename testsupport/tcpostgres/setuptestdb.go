//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/racedayapp/notify-manager-go/pkg/db/migrate"
	database "github.com/racedayapp/notify-manager-go/pkg/db/postgres"
)

// create a pg connection pool for the notify-manager testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("notify-manager-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbUrl := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	if err = migrate.MigrateDb(dbUrl); err != nil {
		log.Fatal(err)
	}

	pool := database.InitWithUrl(dbUrl)
	return pool
}

// SetupExternalTestDb connects to the database in TESTDB_URL and brings
// its schema up to date. Used on CI where the container is provided.
func SetupExternalTestDb() *pgxpool.Pool {
	dbUrl := os.Getenv("TESTDB_URL")
	if err := migrate.MigrateDb(dbUrl); err != nil {
		log.Fatal(err)
	}
	return database.InitWithUrl(dbUrl)
}

func ClearScheduleEventTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from schedule_event")
}

func ClearRaceStandingTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_standing")
}

func ClearStandingsSnapshotTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from standings_snapshot")
}

func ClearUserPreferenceTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from user_preference")
}

func ClearSentNotificationTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from sent_notification")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearSentNotificationTable(pool)
	ClearUserPreferenceTable(pool)
	ClearStandingsSnapshotTable(pool)
	ClearRaceStandingTable(pool)
	ClearScheduleEventTable(pool)
}
