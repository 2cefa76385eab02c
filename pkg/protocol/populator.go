package protocol

import "github.com/dukex/sdsprotocol/pkg/models"

// Populator assigns an ordered list of candidate artifacts to the inputs of a protocol.
// Implementations are bound to protocol definitions when the catalog is built.
type Populator interface {
	// Match computes an assignment without touching the protocol. A non-nil error means
	// the whole batch was rejected.
	Match(p *models.Protocol, data []any) (models.Assignment, error)
}
