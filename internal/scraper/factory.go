package scraper

import (
	"fmt"

	"dealradar/internal/models"
)

// defaultStrategies builds the closed strategy table. Generic is not a
// strategy of its own: the orchestrator fans it out across every entry here.
func defaultStrategies() map[models.Source]Strategy {
	return map[models.Source]Strategy{
		models.SourceAmazon:  newAmazonStrategy(),
		models.SourceRakuten: newRakutenStrategy(),
	}
}

// fanOutOrder fixes the source order for generic dispatch, and with it which
// strategy pays no inter-source delay.
var fanOutOrder = []models.Source{models.SourceAmazon, models.SourceRakuten}

func (o *Orchestrator) strategiesFor(src models.Source) ([]Strategy, error) {
	if src == models.SourceGeneric {
		out := make([]Strategy, 0, len(fanOutOrder))
		for _, s := range fanOutOrder {
			st, ok := o.strategies[s]
			if !ok {
				return nil, fmt.Errorf("no strategy registered for source %q", s)
			}
			out = append(out, st)
		}
		return out, nil
	}

	st, ok := o.strategies[src]
	if !ok {
		return nil, fmt.Errorf("unsupported source %q", src)
	}
	return []Strategy{st}, nil
}
