package orchestrator

import (
	"context"

	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
)

// ConnLease is one exclusively held database connection.
type ConnLease interface {
	DB() *gorm.DB
	Release()
}

// ConnLeaser hands out connection leases, blocking while none is free.
type ConnLeaser interface {
	Acquire(ctx context.Context) (ConnLease, error)
}

type poolLeaser struct {
	pool *gormadapter.ConnPool
}

// NewPoolLeaser adapts a ConnPool to ConnLeaser.
func NewPoolLeaser(pool *gormadapter.ConnPool) ConnLeaser {
	return &poolLeaser{pool: pool}
}

func (l *poolLeaser) Acquire(ctx context.Context) (ConnLease, error) {
	lease, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return lease, nil
}
