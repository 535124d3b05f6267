// Package config reads calc-runtime settings from CALC_* environment
// variables and builds the zap logger they describe.
package config
