// Package protocols holds the catalog of SDS protocol definitions and populates them with
// upstream artifacts.
package protocols

import (
	"log/slog"

	"github.com/dukex/sdsprotocol/pkg/matcher"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/protocol"
)

// Entry binds a protocol definition to the strategy that populates it.
type Entry struct {
	Definition models.Protocol
	Populator  protocol.Populator
}

// Registry is an immutable catalog of protocol definitions, in registration order.
// It is safe for concurrent use.
type Registry struct {
	logger  *slog.Logger
	entries []Entry
}

// NewRegistry creates a catalog from entries. Definitions are copied, so later changes to
// the arguments do not leak into the catalog.
func NewRegistry(logger *slog.Logger, entries ...Entry) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		logger:  logger.With("module", "protocols"),
		entries: make([]Entry, 0, len(entries)),
	}

	for _, e := range entries {
		e.Definition = *e.Definition.Clone()
		e.Definition.Reset()
		r.entries = append(r.entries, e)
	}

	return r
}

func (r *Registry) lookup(name string) (*Entry, bool) {
	for i := range r.entries {
		if r.entries[i].Definition.Name == name {
			return &r.entries[i], true
		}
	}

	return nil, false
}

// GetByName returns a fresh copy of the first protocol registered under name.
func (r *Registry) GetByName(name string) (*models.Protocol, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, false
	}

	return e.Definition.Clone(), true
}

// Names returns the names of the sds-protocol family definitions in registration order,
// the same set All returns.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if IsValidProtocol(e.Definition) {
			names = append(names, e.Definition.Name)
		}
	}

	return names
}

// All returns copies of every registered protocol that belongs to the sds-protocol family.
func (r *Registry) All() []*models.Protocol {
	protocols := make([]*models.Protocol, 0, len(r.entries))
	for _, e := range r.entries {
		if IsValidProtocol(e.Definition) {
			protocols = append(protocols, e.Definition.Clone())
		}
	}

	return protocols
}

// Supports reports whether a population strategy is bound to name.
func (r *Registry) Supports(name string) bool {
	e, ok := r.lookup(name)

	return ok && e.Populator != nil
}

// Match validates p and computes its assignment with the populator bound to p's name.
// p is not modified.
func (r *Registry) Match(p *models.Protocol, data []any) (models.Assignment, error) {
	if !IsValidProtocol(p) {
		name := ""
		if p != nil {
			name = p.Name
		}

		r.logger.Debug("Rejecting invalid protocol", "protocol", name)

		return models.Assignment{}, &matcher.MatchError{Op: "Match", Protocol: name, Slot: -1, Candidate: -1, Err: matcher.ErrInvalidProtocol}
	}

	e, ok := r.lookup(p.Name)
	if !ok || e.Populator == nil {
		r.logger.Debug("Rejecting unsupported protocol", "protocol", p.Name)

		return models.Assignment{}, &matcher.MatchError{Op: "Match", Protocol: p.Name, Slot: -1, Candidate: -1, Err: matcher.ErrUnsupportedProtocol}
	}

	return e.Populator.Match(p, data)
}

// Populate assigns data to the inputs of p. Values are written into p only when every
// input could be resolved; otherwise p is left untouched and false is returned.
//
// Values already present in p are overwritten by the new assignment but never cleared.
// Use GetByName for a fresh copy or Protocol.Reset before reusing p.
func (r *Registry) Populate(p *models.Protocol, data []any) bool {
	assignment, err := r.Match(p, data)
	if err != nil {
		r.logger.Info("Protocol not populated", "error", err)

		return false
	}

	assignment.Apply(p)

	return true
}
