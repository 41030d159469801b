package menuitem

import (
	"github.com/smallbiznis/menuboard/internal/menuitem/repository"
	"github.com/smallbiznis/menuboard/internal/menuitem/service"
	"go.uber.org/fx"
)

var Module = fx.Module("menuitem.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
