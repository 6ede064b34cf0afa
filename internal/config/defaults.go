package config

// Default returns a config populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/redraft",
			LogDir:  "~/.local/share/redraft/logs",
			APIBind: "127.0.0.1:7443",
		},
		Rewrite: Rewrite{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
		},
		Extract: Extract{
			DocConverter:   "antiword",
			TimeoutSeconds: 30,
		},
		Workflow: Workflow{
			QueuePollInterval:  2,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  5,
			HeartbeatTimeout:   60,
			TransformWorkers:   2,
		},
		Retention: Retention{
			Hours:                72,
			SweepIntervalMinutes: 30,
		},
		Logging: Logging{
			Format: "pretty",
			Level:  "info",
		},
	}
}
