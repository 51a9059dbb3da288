package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/support/exception"
)

// ConnPool hands out at most size pinned connections of one *gorm.DB.
// Every statement issued through a Lease runs on the same physical connection.
type ConnPool struct {
	db   *gorm.DB
	sem  *semaphore.Weighted
	size int

	mu       sync.Mutex
	inUse    int
	maxInUse int
	onChange func(inUse int)
}

// NewConnPool creates a pool of size leases over db. onChange, if non-nil, observes the in-use count.
func NewConnPool(db *gorm.DB, size int, onChange func(inUse int)) *ConnPool {
	if size < 1 {
		size = 1
	}
	return &ConnPool{
		db:       db,
		sem:      semaphore.NewWeighted(int64(size)),
		size:     size,
		onChange: onChange,
	}
}

// Lease is one exclusively held connection.
type Lease struct {
	pool     *ConnPool
	conn     *sql.Conn
	db       *gorm.DB
	released sync.Once
}

// Acquire blocks until a lease is free or ctx is done. Failures wrap exception.ErrConnectionUnavailable.
func (p *ConnPool) Acquire(ctx context.Context) (*Lease, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", exception.ErrConnectionUnavailable, err)
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		p.sem.Release(1)
		return nil, fmt.Errorf("%w: %v", exception.ErrConnectionUnavailable, err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, fmt.Errorf("%w: %v", exception.ErrConnectionUnavailable, err)
	}

	pinned := p.db.Session(&gorm.Session{Context: ctx, NewDB: true})
	pinned.Statement.ConnPool = conn

	p.track(1)
	return &Lease{pool: p, conn: conn, db: pinned}, nil
}

// DB returns the gorm handle bound to the leased connection.
func (l *Lease) DB() *gorm.DB {
	return l.db
}

// Release returns the connection to the pool. It is safe to call more than once.
func (l *Lease) Release() {
	l.released.Do(func() {
		_ = l.conn.Close()
		l.pool.track(-1)
		l.pool.sem.Release(1)
	})
}

func (p *ConnPool) track(delta int) {
	p.mu.Lock()
	p.inUse += delta
	if p.inUse > p.maxInUse {
		p.maxInUse = p.inUse
	}
	inUse := p.inUse
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(inUse)
	}
}

// Size is the maximum number of concurrent leases.
func (p *ConnPool) Size() int { return p.size }

// InUse reports the number of leases currently held.
func (p *ConnPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// MaxInUse reports the high-water mark of concurrently held leases.
func (p *ConnPool) MaxInUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxInUse
}
