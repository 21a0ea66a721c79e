package handler

import (
	"hubble/internal/app/chat"
	"hubble/internal/configs"
)

// AppDeps bundles the shared dependencies every handler needs.
type AppDeps struct {
	Hub    *chat.Hub
	Config *configs.AppConfig
}
