package gorm

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
	"github.com/tigerroll/weekreport/pkg/config"
)

// ConnectionResolver picks the provider registered for a connection's configured type.
type ConnectionResolver struct {
	providers map[string]database.Provider
	cfg       *config.Config
}

// ResolverParams collects every provider registered in the db_providers group.
type ResolverParams struct {
	fx.In
	Providers []database.Provider `group:"db_providers"`
	Cfg       *config.Config
}

// NewConnectionResolver creates a ConnectionResolver.
func NewConnectionResolver(p ResolverParams) *ConnectionResolver {
	providerMap := make(map[string]database.Provider, len(p.Providers))
	for _, provider := range p.Providers {
		providerMap[provider.Type()] = provider
	}
	return &ConnectionResolver{providers: providerMap, cfg: p.Cfg}
}

// ResolveConnection returns the open connection for name. A connection whose ping fails is reopened once.
func (r *ConnectionResolver) ResolveConnection(ctx context.Context, name string) (database.Connection, error) {
	dbConfig, err := DecodeDatabaseConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}
	provider, ok := r.providers[dbConfig.Type]
	if !ok {
		return nil, fmt.Errorf("no database provider for type '%s' (connection '%s')", dbConfig.Type, name)
	}
	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.SQLDB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return provider.ForceReconnect(name)
	}
	return conn, nil
}
