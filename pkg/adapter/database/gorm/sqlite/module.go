package sqlite

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
)

// Module registers the sqlite provider in the db_providers group.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewProvider,
			fx.As(new(database.Provider)),
			fx.ResultTags(`group:"`+database.ProviderGroup+`"`),
		),
	),
)
