package manager

import (
	"context"

	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pbugni/pheme.longitudinal/internal/config"
	"github.com/pbugni/pheme.longitudinal/internal/dbpool"
	"github.com/pbugni/pheme.longitudinal/internal/dimension"
	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/util/filelock"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// Set is used by Wire.
var Set = wire.NewSet(
	ProvideWarehousePool,
	ProvideMartPool,
	ProvideWarehouseStore,
	ProvideMartStore,
	ProvideLocks,
	ProvideResolver,
	ProvideLock,
	ProvideManager,
)

// WarehousePool and MartPool give the two pgxpool.Pool connections
// distinct types, the same trick the teacher's types.StagingPool /
// types.TargetPool split uses so Wire (and readers) never confuse
// which database a pool belongs to.
type WarehousePool struct{ *pgxpool.Pool }
type MartPool struct{ *pgxpool.Pool }

// ProvideWarehousePool is called by Wire to create a connection pool
// against the data warehouse. The pool is closed by the cancel
// function.
func ProvideWarehousePool(ctx context.Context, cfg *config.Config) (*WarehousePool, func(), error) {
	pool, err := dbpool.Open(ctx, dbpool.Target{
		Product:  dbpool.ProductPostgres,
		Host:     "localhost",
		Port:     cfg.WarehousePort,
		Database: cfg.Warehouse,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
	})
	if err != nil {
		return nil, nil, err
	}
	return &WarehousePool{pool}, pool.Close, nil
}

// ProvideMartPool is called by Wire to create a connection pool
// against the data mart. The pool is closed by the cancel function.
func ProvideMartPool(ctx context.Context, cfg *config.Config) (*MartPool, func(), error) {
	pool, err := dbpool.Open(ctx, dbpool.Target{
		Product:  dbpool.ProductPostgres,
		Host:     "localhost",
		Port:     cfg.MartPort,
		Database: cfg.Mart,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
	})
	if err != nil {
		return nil, nil, err
	}
	return &MartPool{pool}, pool.Close, nil
}

// ProvideWarehouseStore is called by Wire to adapt a WarehousePool
// into the warehouse.Store the worker fleet actually depends on.
func ProvideWarehouseStore(pool *WarehousePool) warehouse.Store {
	return &warehouse.PGStore{Pool: pool.Pool}
}

// ProvideMartStore is called by Wire to adapt a MartPool into the
// mart.Store the worker fleet actually depends on.
func ProvideMartStore(pool *MartPool) mart.Store {
	return &mart.PGStore{Pool: pool.Pool}
}

// ProvideLocks is called by Wire to build the one *dimension.Locks
// value shared across every worker goroutine.
func ProvideLocks() *dimension.Locks {
	return dimension.NewLocks()
}

// ProvideResolver is called by Wire to build the shared select-or-
// insert resolver. Dimension tables live in the mart schema alongside
// the fact/association tables they're referenced from.
func ProvideResolver(pool *MartPool, locks *dimension.Locks) *dimension.Resolver {
	return &dimension.Resolver{Pool: pool.Pool, Locks: locks}
}

// ProvideLock is called by Wire to build the manager's single-instance
// file lock, rooted at the configured tmp_dir.
func ProvideLock(cfg *config.Config) *filelock.Lock {
	return filelock.New(filelock.DefaultDir(cfg.TmpDir))
}

// ProvideManager is called by Wire to assemble the final Manager.
func ProvideManager(
	wh warehouse.Store, m mart.Store, resolver *dimension.Resolver, lock *filelock.Lock,
) *Manager {
	return &Manager{Warehouse: wh, Mart: m, Resolver: resolver, Lock: lock}
}
