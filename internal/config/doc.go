// Package config provides configuration parsing for requery projects.
//
// The configuration is stored in rq.yaml (or rq.yml, or rq.json) at the
// project root. This package handles loading, saving, and validating it.
// A project without a configuration file runs on the defaults.
//
// # Configuration File Structure
//
//	name: todo-demo
//	app: todos
//	host: localhost
//	port: 3000
//	metrics:
//	  enabled: true
//	  path: /metrics
//	  namespace: ""
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(demo.Names()...); err != nil {
//	    return err
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
