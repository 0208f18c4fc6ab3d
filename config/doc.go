// Package config loads connector configuration from the environment.
//
// Each service gets its own env prefix:
//
//	cfg := config.MustNew[config.ServiceConfig]("CALENDLY")
//	conn := connector.New("calendly", driver,
//	    connector.WithConfig(cfg.ConnectorConfig()),
//	    connector.WithBreakerConfig(cfg.BreakerConfig()),
//	)
//
// An env file may seed the process environment via the -env flag or a ./.env
// file. Credential placeholders inside config values are expanded with
// ExpandStrict, which fails loudly on missing variables.
package config
