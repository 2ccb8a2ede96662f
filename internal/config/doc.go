// Package config provides configuration parsing for slate projects.
//
// The configuration is stored in slate.yaml at the project root.
//
// # Configuration File Structure
//
//	name: site
//	paths:
//	  templates: templates
//	  public: public
//	server:
//	  host: localhost
//	  port: 3000
//	dev:
//	  watch: [templates]
//	  hotReload: true
//	  debounce: 100ms
//	metrics:
//	  enabled: true
//	  path: /metrics
//	  subsystem: http
//	  labels: {site: blog}
//	tracing:
//	  enabled: false
//	source:
//	  kind: s3
//	  bucket: my-templates
//	  prefix: site/
//	render:
//	  doctype: true
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
