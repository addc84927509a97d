// Package dbpool constructs the longitudinal engine's connection pools
// against its two postgres-family databases (warehouse and mart),
// grounded on the teacher's internal/util/stdpool package.
package dbpool

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registered for a future MySQL-backed warehouse target
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Product identifies the wire protocol a Target speaks. Only
// ProductPostgres is wired to a live pool. The mysql driver is
// registered by the blank import above, but Open returns an error for
// ProductMySQL; the constant mirrors the teacher's
// types.ProductMySQL / OpenMySQLAsTarget split.
type Product int

const (
	ProductPostgres Product = iota
	ProductMySQL
)

// Target names one of the engine's two databases.
type Target struct {
	Product  Product
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (t Target) connString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", t.User, t.Password, t.Host, t.Port, t.Database)
}

const (
	pingRetryInterval = 2 * time.Second
	pingMaxAttempts   = 30
)

// Open opens a pgxpool.Pool against t, retrying the initial ping while
// the database is still coming up, the same startup allowance the
// teacher's OpenMySQLAsTarget gives a freshly-started target.
func Open(ctx context.Context, t Target) (*pgxpool.Pool, error) {
	if t.Product != ProductPostgres {
		return nil, errors.Errorf("dbpool: product %d has no driver wired", t.Product)
	}

	pool, err := pgxpool.New(ctx, t.connString())
	if err != nil {
		return nil, errors.Wrapf(err, "opening pool for %q", t.Database)
	}

	var pingErr error
	for attempt := 0; attempt < pingMaxAttempts; attempt++ {
		if pingErr = pool.Ping(ctx); pingErr == nil {
			log.Infof("connected to database %q at %s:%d", t.Database, t.Host, t.Port)
			return pool, nil
		}
		log.WithError(pingErr).Infof("waiting for database %q to become ready", t.Database)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(pingRetryInterval):
		}
	}
	pool.Close()
	return nil, errors.Wrapf(pingErr, "could not ping %q after %d attempts", t.Database, pingMaxAttempts)
}
