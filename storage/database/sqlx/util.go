package sqlxrepos

import (
	"strings"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// orderBy renders an ORDER BY clause, falling back to fallbackExpr when no ordering is given.
func orderBy(ordering []core.DBOrdering, fallbackExpr string) string {
	if len(ordering) == 0 {
		if fallbackExpr == "" {
			return ""
		}
		return " ORDER BY " + fallbackExpr
	}
	exprs := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		exprs = append(exprs, ord.String())
	}
	return " ORDER BY " + strings.Join(exprs, ", ")
}
