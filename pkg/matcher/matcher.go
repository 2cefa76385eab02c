// Package matcher assigns ordered candidate artifacts to the ordered inputs of a protocol.
//
// The assignment is a single greedy pass with two cursors, one over the protocol inputs and
// one over the candidates. A candidate that does not fit an optional input is offered to the
// next input instead; a candidate that does not fit a mandatory input rejects the batch. The
// pass never backtracks, so candidates must be supplied in input declaration order.
package matcher

import (
	"log/slog"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Greedy is the order-preserving populator used by the built-in protocols.
type Greedy struct {
	fs     billy.Basic
	logger *slog.Logger
}

// NewGreedy creates a greedy populator that checks paths against fs.
// A nil fs means the host filesystem.
func NewGreedy(fs billy.Basic, logger *slog.Logger) *Greedy {
	if fs == nil {
		fs = osfs.Default
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Greedy{
		fs:     fs,
		logger: logger.With("module", "matcher"),
	}
}

// Match computes the assignment of data to the inputs of p. The protocol is not modified.
func (g *Greedy) Match(p *models.Protocol, data []any) (models.Assignment, error) {
	if p == nil {
		return models.Assignment{}, newMatchError("", -1, -1, ErrInvalidProtocol)
	}

	logger := g.logger.With("protocol", p.Name, "inputs", len(p.Inputs), "candidates", len(data))

	if len(data) > len(p.Inputs) {
		logger.Debug("Rejecting candidates", "reason", ErrTooManyCandidates)

		return models.Assignment{}, newMatchError(p.Name, -1, -1, ErrTooManyCandidates)
	}

	bindings := make([]models.Binding, 0, len(data))

	i, j := 0, 0
	for i < len(p.Inputs) {
		slot := p.Inputs[i]

		if j < len(data) {
			if Accepts(g.fs, slot.Type, data[j]) {
				bindings = append(bindings, models.Binding{SlotIndex: i, DataIndex: j, Value: data[j]})
				i++
				j++

				continue
			}

			if slot.Optional {
				logger.Debug("Skipping optional input", "slot", i, "type", slot.Type, "candidate", j)
				i++

				continue
			}

			logger.Debug("Rejecting candidates", "reason", ErrMandatorySlotUnfilled, "slot", i, "type", slot.Type, "candidate", j)

			return models.Assignment{}, newMatchError(p.Name, i, j, ErrMandatorySlotUnfilled)
		}

		if !slot.Optional {
			logger.Debug("Rejecting candidates", "reason", ErrMandatorySlotUnfilled, "slot", i, "type", slot.Type)

			return models.Assignment{}, newMatchError(p.Name, i, -1, ErrMandatorySlotUnfilled)
		}

		i++
	}

	if j < len(data) {
		logger.Debug("Rejecting candidates", "reason", ErrLeftoverCandidates, "candidate", j)

		return models.Assignment{}, newMatchError(p.Name, -1, j, ErrLeftoverCandidates)
	}

	return models.Assignment{Protocol: p.Name, Bindings: bindings}, nil
}
