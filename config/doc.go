// Package config provides runtime configuration for the lending service.
//
// Configuration is read from environment variables, with an optional .env
// file loaded first for local development. It also contains factory helpers
// for building a pgxpool.Config from the Postgres settings.
package config
