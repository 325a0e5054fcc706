// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package config

import (
	"fmt"

	"github.com/tomtom215/obsbridge/internal/validation"
)

// Validate checks struct tag rules, then the cross-field rules tags
// cannot express. Errors read "config: <field>: <rule>".
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	validators := []func() error{
		c.validateNATS,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.NATS.Enabled && c.NATS.URL == "" {
		return validation.New("nats.url", "is required when nats is enabled")
	}
	return nil
}
