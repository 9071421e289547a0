package stores

import (
	"github.com/charmbracelet/log"
)

// Deprecated user columns whose values now live in the external identity
// store. Reads and writes still work but are warned about until the columns
// are dropped.
var defaultDeprecatedColumns = []string{"password_hash", "email_verified"}

// DeprecationGuard is an explicit pre-read/pre-write validation step. Stores
// pass the columns a caller asked for; the guard logs a structured warning for
// any column in its configured deprecated set.
type DeprecationGuard struct {
	deprecated map[string]bool
	logger     *log.Logger
}

// NewDeprecationGuard creates a guard for the given columns. A nil or empty
// column list installs the default deprecated set.
func NewDeprecationGuard(logger *log.Logger, columns ...string) *DeprecationGuard {
	if len(columns) == 0 {
		columns = defaultDeprecatedColumns
	}
	deprecated := make(map[string]bool, len(columns))
	for _, c := range columns {
		deprecated[c] = true
	}
	return &DeprecationGuard{deprecated: deprecated, logger: logger}
}

// CheckSelect warns when a read selects deprecated columns and returns the
// offending column names.
func (g *DeprecationGuard) CheckSelect(columns []string) []string {
	return g.check("read", columns)
}

// CheckWrite warns when a write sets deprecated columns and returns the
// offending column names.
func (g *DeprecationGuard) CheckWrite(columns []string) []string {
	return g.check("write", columns)
}

func (g *DeprecationGuard) check(op string, columns []string) []string {
	if g == nil {
		return nil
	}

	var flagged []string
	for _, c := range columns {
		if g.deprecated[c] {
			flagged = append(flagged, c)
		}
	}
	if len(flagged) > 0 && g.logger != nil {
		g.logger.Warn("deprecated user column access; these columns are handled by the identity store",
			"op", op, "columns", flagged)
	}
	return flagged
}
