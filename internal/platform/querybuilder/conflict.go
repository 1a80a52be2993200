package querybuilder

import (
	"fmt"
	"strings"
)

// Conflict renders a Postgres ON CONFLICT clause. Without updates it renders
// DO NOTHING.
type Conflict struct {
	target  []string
	updates []string
}

func OnConflict(target ...string) *Conflict {
	return &Conflict{target: append([]string(nil), target...)}
}

// DoUpdate overwrites each column with the incoming row's value.
func (c *Conflict) DoUpdate(columns ...string) *Conflict {
	for _, col := range columns {
		c.updates = append(c.updates, col+" = EXCLUDED."+col)
	}
	return c
}

// Set assigns column from a raw SQL expression, such as NOW() or a COALESCE
// that keeps the stored value.
func (c *Conflict) Set(column, expr string) *Conflict {
	c.updates = append(c.updates, column+" = "+expr)
	return c
}

func (c *Conflict) appendSQL(w *writer) error {
	if len(c.target) == 0 {
		return fmt.Errorf("conflict target is required")
	}
	w.write(" ON CONFLICT (", strings.Join(c.target, ", "), ")")
	if len(c.updates) == 0 {
		w.write(" DO NOTHING")
		return nil
	}
	w.write(" DO UPDATE SET ", strings.Join(c.updates, ", "))
	return nil
}
