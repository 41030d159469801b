package offerings

import (
	"github.com/smallbiznis/menuboard/internal/offerings/repository"
	"github.com/smallbiznis/menuboard/internal/offerings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("offerings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
