// Package health provides a composable health check framework.
//
// Independently owned subsystems each report their state through a
// Contributor. A Registry collects named contributors and is itself a
// Contributor, so registries nest into a tree. An Endpoint evaluates the
// registry under the policy of a named Group and produces a transport-ready
// Response: an HTTP status code plus a JSON body.
//
// # Core Concepts
//
// Status is one of UP, DOWN, OUT_OF_SERVICE or UNKNOWN, ordered by severity
// DOWN > OUT_OF_SERVICE > UNKNOWN > UP. Health is an immutable snapshot of a
// status and optional details.
//
// # Basic Usage
//
//	reg := health.NewRegistry()
//	_ = reg.Register("db", health.PingContributor(db.PingContext))
//	_ = reg.Register("memory", health.NewMemoryContributor(health.MemoryConfig{}))
//
//	endpoint, err := health.NewEndpoint(reg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, _ := endpoint.Health(ctx, health.DefaultGroup)
//	// resp.Status == 200, resp.Body marshals to
//	// {"status":"UP","components":{"db":{"status":"UP"},"memory":{...}}}
//
// # Failure Isolation
//
// The Registry evaluates all direct children concurrently. A child that
// returns an error, panics, or returns a Health without a valid status is
// reported as DOWN with an "error" detail; its siblings are unaffected and
// Registry.Health never fails.
//
// # Groups
//
// Each Group pairs a StatusAggregator with an HTTPCodeStatusMapper, so two
// groups over the same registry can apply different policies:
//
//	order, _ := health.NewOrderedStatusAggregator(health.StatusDown, health.StatusUp)
//	lenient, _ := health.NewMappingHTTPCodeStatusMapper(map[health.Status]int{
//	    health.StatusOutOfService: http.StatusOK,
//	})
//	endpoint, _ := health.NewEndpoint(reg, map[string]health.Group{
//	    health.DefaultGroup: {
//	        StatusAggregator:     health.SimpleStatusAggregator(),
//	        HTTPCodeStatusMapper: health.SimpleHTTPCodeStatusMapper(),
//	    },
//	    "liveness": {
//	        StatusAggregator:     order,
//	        HTTPCodeStatusMapper: lenient,
//	        Include:              []string{"memory"},
//	    },
//	})
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, endpoint)
package health
