package gorm

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
)

// Module provides the connection resolver over every registered dialect provider.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewConnectionResolver,
		fx.As(new(database.Resolver)),
	)),
)
