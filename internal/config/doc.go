// Package config provides configuration management for nxharness.
//
// This package implements a simple configuration system that loads a single
// YAML file. An explicit file can be passed with the --config-path flag;
// otherwise nxharness.yaml in the working directory is tried first, then
// ~/.config/nxharness/config.yaml, and finally the built-in defaults.
//
// # Resolution Order
//
//  1. --config-path flag (the file must exist and parse)
//  2. ./nxharness.yaml
//  3. ~/.config/nxharness/config.yaml
//  4. Built-in defaults (GetDefaultConfig)
//
// A present but unparsable file is always an error; it is never skipped in
// favor of a later candidate.
//
// # Environment Expansion
//
// ${VAR} references are expanded after parsing in the repository URL, the
// cache and history paths, and service commands, arguments and environment
// values. Repository credentials are never read from the file itself; they
// come from the environment (NXHARNESS_REPO_USER/_PASSWORD, or the standard
// AWS variables for s3 repositories).
//
// # Validation
//
// Validation is split by use: ValidateForProvision covers the artifact
// coordinate, destination, overlays and services; ValidateForTest covers the
// test command. Both return a *ValidationError listing every problem found,
// which the CLI maps to a usage exit code.
package config
