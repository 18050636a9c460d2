package app

import (
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/modules/echo"
	"github.com/vk/taskgrid/modules/fsops"
	"github.com/vk/taskgrid/modules/httpx"
	"github.com/vk/taskgrid/modules/random"
)

// coreModules are the builtin plugin collections every App carries unless
// the caller supplies its own set.
var coreModules = []registry.Module{
	&echo.Module{},
	&fsops.Module{},
	&httpx.Module{},
	&random.Module{},
}
