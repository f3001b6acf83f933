package hooks

// Config is the top-level configuration loaded from .taskdeck.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the commands run as mutations settle.
type HooksConfig struct {
	OnSucceeded *HookConfig `yaml:"on_succeeded"`
	OnFailed    *HookConfig `yaml:"on_failed"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
