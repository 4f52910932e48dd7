package devproxy

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/thushan/llamadeck/internal/logger"
)

type Route struct {
	Prefix      string
	Target      string
	Description string
	IsProxy     bool
}

// RouteTable keeps routes in registration order, proxy prefixes are matched
// in that order and the first hit wins
type RouteTable struct {
	logger *logger.StyledLogger
	routes []Route
}

func NewRouteTable(logger *logger.StyledLogger) *RouteTable {
	return &RouteTable{logger: logger}
}

func (t *RouteTable) AddProxy(prefix, target string) {
	t.routes = append(t.routes, Route{
		Prefix:      prefix,
		Target:      target,
		Description: "proxied to backend",
		IsProxy:     true,
	})
}

func (t *RouteTable) AddLocal(prefix, target, description string) {
	t.routes = append(t.routes, Route{
		Prefix:      prefix,
		Target:      target,
		Description: description,
	})
}

// MatchProxy reports the first proxy route whose prefix starts path. This is
// a plain string prefix, so "/v1" also matches "/v1beta".
func (t *RouteTable) MatchProxy(path string) (Route, bool) {
	for _, r := range t.routes {
		if r.IsProxy && strings.HasPrefix(path, r.Prefix) {
			return r, true
		}
	}
	return Route{}, false
}

func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

func (t *RouteTable) ProxyCount() int {
	n := 0
	for _, r := range t.routes {
		if r.IsProxy {
			n++
		}
	}
	return n
}

// LogTable prints the routes as a table on stdout
func (t *RouteTable) LogTable() {
	if len(t.routes) == 0 {
		return
	}

	tableData := [][]string{
		{"ROUTE", "TARGET", "DESCRIPTION"},
	}
	for _, r := range t.routes {
		tableData = append(tableData, []string{r.Prefix, r.Target, r.Description})
	}

	t.logger.InfoWithCount("Registered dev routes", len(t.routes), "proxied", t.ProxyCount())
	tableString, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	fmt.Print(tableString)
}
