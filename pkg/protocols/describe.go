package protocols

import (
	"fmt"
	"strings"

	"github.com/dukex/sdsprotocol/pkg/models"
)

// Describe renders a markdown summary of p: its name, its description and the numbered
// list of its inputs.
func Describe(p *models.Protocol) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", p.Name)
	b.WriteString(p.Info)

	if len(p.Inputs) == 0 {
		return b.String()
	}

	b.WriteString("\n## Input")
	if len(p.Inputs) > 1 {
		b.WriteString("s")
	}

	b.WriteString("\n")

	for i, slot := range p.Inputs {
		fmt.Fprintf(&b, "%d. ", i+1)

		if slot.Info != "" {
			b.WriteString(slot.Info + " ")
		}

		details := make([]string, 0, 3)
		if slot.Mimetype != "" {
			details = append(details, fmt.Sprintf("type=**%s**", slot.Mimetype))
		}

		if slot.Destination != "" {
			details = append(details, fmt.Sprintf("destination=**%s**", slot.Destination))
		}

		if slot.Optional {
			details = append(details, "optional")
		}

		if len(details) > 0 {
			b.WriteString("[" + strings.Join(details, ", ") + "]")
		}

		b.WriteString("\n")
	}

	return b.String()
}
