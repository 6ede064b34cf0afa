package config

import "strings"

func (c *Config) normalize() error {
	var err error

	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Rewrite.APIKey = strings.TrimSpace(c.Rewrite.APIKey)
	c.Rewrite.BaseURL = strings.TrimRight(strings.TrimSpace(c.Rewrite.BaseURL), "/")
	c.Rewrite.Model = strings.TrimSpace(c.Rewrite.Model)
	c.Extract.DocConverter = strings.TrimSpace(c.Extract.DocConverter)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
