package router

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// FormatTable renders the enabled routes of every loaded router as an
// aligned table, for the CLI and the admin listing.
func (s *Store) FormatTable() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTER\tROUTE\tDOC")
	for _, id := range s.Routers() {
		routes, err := s.Routes(id)
		if err != nil {
			continue
		}
		docs, _ := s.Docs(id)
		for _, route := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, route, docs[route])
		}
	}
	w.Flush()
	return b.String()
}
