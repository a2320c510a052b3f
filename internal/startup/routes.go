package startup

import (
	"sort"
	"strings"

	"media-manager/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists the routes registered on router, one entry per method.
// Routes without a method restriction are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		// Subrouter prefixes carry no handler of their own.
		if route.GetHandler() == nil {
			return nil
		}
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: path, Name: route.GetName()})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the route table at debug level, grouped by prefix.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	section("HTTP server setup")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		sort.SliceStable(routes, func(i, j int) bool {
			return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
		})

		logging.Debug("  Registered routes (%d total):", len(routes))
		current := "\x00"
		for _, route := range routes {
			if group := getRouteGroup(route.Path); group != current {
				current = group
				if group == "" {
					group = "root"
				}
				logging.Debug("  [%s]", group)
			}
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup returns the first path segment, or the first two under /api.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		resource, _, _ := strings.Cut(rest, "/")
		return "api/" + resource
	}
	return first
}
