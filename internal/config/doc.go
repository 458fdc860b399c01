// Package config provides configuration parsing for pulse.
//
// The configuration is stored in pulse.json. Every field is optional;
// missing values take the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "log": {"level": "debug", "development": true},
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "metrics": {"enabled": true, "namespace": "pulse", "path": "/metrics"},
//	  "tracing": {"enabled": false},
//	  "counter": {"initial": 0, "asyncUpdates": true}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
