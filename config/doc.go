// Package config loads and validates the gateway's runtime configuration.
//
// Configuration comes from a single YAML file read once at process start.
// Values may reference environment variables with ${VAR}; a referenced
// variable that is missing from the environment fails the load. Any
// validation failure is fatal: a gateway with a bad dependency list or a
// non-positive probe timeout refuses to serve rather than probing wrong.
package config
