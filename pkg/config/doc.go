// Package config defines the canonrest server configuration.
//
// Configuration is layered: Default values, then an optional YAML file,
// then environment variables, then command-line flags applied by the CLI.
//
//	cfg, err := config.Load("canonrest.yaml")
//	if errors.Is(err, config.ErrFileNotFound) {
//	    ...
//	}
//
// A complete file:
//
//	server:
//	  addr: ":8080"
//	  basePath: /api/sample
//	  readTimeout: 10s
//	  writeTimeout: 10s
//	  shutdownTimeout: 30s
//	  maxBodySize: 1048576
//	  metrics: true
//	logging:
//	  level: info
//	  format: text
//	  file: ""
//	seed:
//	  count: 20
//	  prefix: Resource
//	pagination:
//	  defaultTake: 100
//	  maxTake: 1000
//
// Every field can be overridden by the CANONREST_* variable listed in its
// env tag; EnvUsage renders the list.
package config
