package protocols

import (
	"log/slog"

	"github.com/dukex/sdsprotocol/pkg/matcher"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/go-git/go-billy/v5"
)

// SimpleScaffoldName is the name of the scaffold-based SPARC dataset protocol.
const SimpleScaffoldName = "SimpleScaffold"

// SimpleScaffold returns the definition of the scaffold-based SPARC dataset protocol.
func SimpleScaffold() models.Protocol {
	return models.Protocol{
		ID:      models.ProtocolFamily,
		Version: "0.1.0",
		Name:    SimpleScaffoldName,
		Kind:    "computational",
		Info:    "This protocol defines the required files to create a Scaffold based SPARC dataset.",
		Inputs: []models.Slot{
			models.IdentifierFileSlot("application/json", "Scaffold creator step configuration file.", "primary"),
			models.IdentifierFileSlot("application/json", "Argon viewer step configuration file.", "primary"),
			models.IdentifierFileSlot("application/json", "Scene exporter webGL step configuration file.", "primary"),
			models.IdentifierFileSlot("application/json", "Scene exporter thumbnail step configuration file.", "primary"),
			models.DirectorySlot("WebGL output directory", "derivative"),
			models.DictSlot("JSON serializable dict containing provenance information.", "primary/provenance.json"),
		},
	}
}

// Default builds the built-in catalog. Paths are checked against fs; nil means the host
// filesystem.
func Default(fs billy.Basic, logger *slog.Logger) *Registry {
	greedy := matcher.NewGreedy(fs, logger)

	return NewRegistry(logger,
		Entry{Definition: SimpleScaffold(), Populator: greedy},
	)
}
