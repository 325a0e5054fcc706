// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package validation wraps go-playground/validator v10 with a shared
// validator instance and readable error messages.
//
// Struct fields are named by their koanf tag, so a failure on
// Config.OBS.Port is reported as:
//
//	obs.port: must be at most 65535
//
// Usage:
//
//	type OBSConfig struct {
//	    Host string `koanf:"host" validate:"required"`
//	    Port int    `koanf:"port" validate:"min=1,max=65535"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("config: %w", err)
//	}
package validation
