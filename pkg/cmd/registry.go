// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/dukex/sdsprotocol/pkg/registry"
)

func registerNodePlugins(reg *registry.Registry, pluginsPath string) {
	if pluginsPath == "" {
		return
	}

	if _, err := reg.LoadNodePlugins(pluginsPath); err != nil {
		panic(err)
	}
}

// NewCatalog builds the built-in protocol catalog checking paths on the host filesystem.
func NewCatalog(log *slog.Logger) *protocols.Registry {
	return protocols.Default(nil, log)
}

func NewRegistry(log *slog.Logger, catalog *protocols.Registry, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(log)

	registerNodePlugins(reg, pluginsPath)
	reg.RegisterDefaultNodes(catalog)

	return reg
}
