package registry

import (
	"github.com/dukex/sdsprotocol/pkg/nodes/sdsprotocol"
	"github.com/dukex/sdsprotocol/pkg/protocols"
)

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes(catalog *protocols.Registry) {
	// Register SDS protocol node
	r.RegisterNode(sdsprotocol.NewSDSProtocolNodeFactory(catalog))
}
