package layout

import (
	"github.com/smallbiznis/menuboard/internal/layout/repository"
	"github.com/smallbiznis/menuboard/internal/layout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("layout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
