// Package config loads a health endpoint definition from YAML.
//
//	default_group: primary
//	groups:
//	  primary: {}
//	  liveness:
//	    include: [memory]
//	    order: [DOWN, OUT_OF_SERVICE, UP, UNKNOWN]
//	    http_mapping: {OUT_OF_SERVICE: 200}
//	registry:
//	  concurrency_limit: 8
//	contributors:
//	  memory: {warning: 0.8, critical: 0.95}
//	  http:
//	    - name: payments
//	      url: http://payments:8080/health
//	      retries: 2
//	      circuit_failures: 5
//	cache:
//	  ttl: 10s
//	  failure_ttl: -1s
//	http:
//	  show_details: when_authorized
//	  request_timeout: 5s
//	  required_roles: [health:details]
//	  api_keys:
//	    - id: ops
//	      key: ${HEALTH_API_KEY}
//	      principal: ops
//	      roles: [health:details]
//	observe:
//	  service_name: checkout
//	  logging: {enabled: true, level: warn}
//
// Credentials accept ${VAR} expansion and secretref values (see package
// secret). A referenced variable that is not set fails the load.
//
// Typical wiring:
//
//	cfg, err := config.Load("health.yaml")
//	reg, err := cfg.NewRegistry(mw)
//	_ = reg.Register("db", health.PingContributor(db.PingContext))
//	endpoint, err := cfg.NewEndpoint(reg)
//	opts, err := cfg.HandlerOptions()
//	health.RegisterHandlers(mux, endpoint, opts...)
//
// Watch reloads the file on change for long-running servers.
package config
