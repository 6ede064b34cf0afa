package main

import (
	"fmt"
	"strings"
	"sync"

	"redraft/internal/config"
)

type commandContext struct {
	apiFlag    *string
	tokenFlag  *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, tokenFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		tokenFlag:  tokenFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// client builds an API client from flags, falling back to the configured
// daemon bind address.
func (c *commandContext) client() (*apiClient, error) {
	baseURL := ""
	if c.apiFlag != nil {
		baseURL = strings.TrimSpace(*c.apiFlag)
	}
	token := ""
	if c.tokenFlag != nil {
		token = strings.TrimSpace(*c.tokenFlag)
	}

	if baseURL == "" || token == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		if baseURL == "" {
			bind := strings.TrimSpace(cfg.Paths.APIBind)
			if bind == "" {
				return nil, fmt.Errorf("no daemon address: set api_bind in the config or pass --api")
			}
			baseURL = "http://" + bind
		}
		if token == "" {
			token = cfg.Paths.APIToken
		}
	}
	return newAPIClient(baseURL, token), nil
}
