package gates

import "fmt"

// Decision is the full evaluation for one check-in: every contributing gate,
// the worst-of fold, and the sizing guidance for display.
type Decision struct {
	Whoop      *string  `json:"whoop,omitempty"`
	Schema     string   `json:"schema"`
	Mental     *string  `json:"mental,omitempty"`
	Final      string   `json:"final"`
	Guidance   Guidance `json:"guidance"`
	Downgrades []string `json:"downgrades,omitempty"`
}

// Evaluate runs all three gates over one check-in's inputs and folds them.
func (e *Evaluator) Evaluate(sleep, recovery string, awareness, connectedness int, schemaScores []int) Decision {
	whoop := e.WhoopGate(sleep, recovery)
	schema := e.SchemaGate(schemaScores)
	mental := e.MentalGate(awareness, connectedness)

	contributing := []Signal{schema}
	if whoop != nil {
		contributing = append(contributing, *whoop)
	}
	if mental != nil {
		contributing = append(contributing, *mental)
	}
	final := FinalGate(contributing...)

	d := Decision{
		Schema:   schema.String(),
		Final:    final.String(),
		Guidance: SizingGuidance(final),
	}
	if whoop != nil {
		s := whoop.String()
		d.Whoop = &s
		if *whoop != Green {
			d.Downgrades = append(d.Downgrades, fmt.Sprintf("Whoop: %s", s))
		}
	}
	if schema != Green {
		d.Downgrades = append(d.Downgrades, fmt.Sprintf("Schemas: %s", schema))
	}
	if mental != nil {
		s := mental.String()
		d.Mental = &s
		if *mental != Green {
			d.Downgrades = append(d.Downgrades, fmt.Sprintf("Mental: %s", s))
		}
	}
	return d
}
