package main

import (
	"github.com/fwojciec/webcite/toml"
)

// Run executes the rules command.
func (c *RulesCmd) Run(deps *Dependencies) error {
	return toml.EncodeRules(deps.Stdout, deps.Rules)
}
