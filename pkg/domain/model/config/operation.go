package config

import (
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// Operation describes one entry of the operation catalog: an external
// mutating operation the agent may stage for approval.
type Operation struct {
	ID          string
	Name        string
	Description string
	Risk        types.RiskLevel
}

// Catalog is the compiled operation catalog keyed by operation ID
type Catalog struct {
	operations map[string]Operation
	order      []string
}

// NewCatalog builds a catalog from operation definitions. Order is preserved
// for listing.
func NewCatalog(operations []Operation) *Catalog {
	c := &Catalog{
		operations: make(map[string]Operation, len(operations)),
		order:      make([]string, 0, len(operations)),
	}
	for _, op := range operations {
		if _, exists := c.operations[op.ID]; !exists {
			c.order = append(c.order, op.ID)
		}
		c.operations[op.ID] = op
	}
	return c
}

// Get looks up an operation by ID
func (c *Catalog) Get(id string) (Operation, bool) {
	op, ok := c.operations[id]
	return op, ok
}

// Operations returns all operations in definition order
func (c *Catalog) Operations() []Operation {
	result := make([]Operation, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.operations[id])
	}
	return result
}
