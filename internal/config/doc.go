// Package config provides configuration parsing for Reflow servers.
//
// The configuration is stored in reflow.yaml at the project root.
// This package handles loading, saving, and defaulting configuration.
//
// # Configuration File Structure
//
//	server:
//	  host: localhost
//	  port: 8090
//	  readOnly: false
//	log:
//	  level: info
//	  format: text
//	state:
//	  seed: ./state.json
//	sync:
//	  pingInterval: 30s
//	  sendBuffer: 64
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr())
package config
