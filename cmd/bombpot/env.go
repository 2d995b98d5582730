package main

import (
	"fmt"

	"github.com/lox/bombpot/internal/config"
)

// EnvCmd lists the BOMBPOT_* variables that override the config file.
type EnvCmd struct{}

func (c *EnvCmd) Run() error {
	usage, err := config.EnvUsage()
	if err != nil {
		return err
	}
	fmt.Println(usage)
	return nil
}
