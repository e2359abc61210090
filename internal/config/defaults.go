package config

const (
	defaultDataDir            = "~/.local/share/muraai"
	defaultLogDir             = "~/.local/share/muraai/logs"
	defaultAPIBind            = "127.0.0.1:7733"
	defaultGeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel        = "gemini-2.0-flash-exp"
	defaultGeminiTimeout      = 120
	defaultTranslateBaseURL   = "https://translation.googleapis.com/language/translate/v2"
	defaultTranslateTimeout   = 15
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Translate: Translate{
			BaseURL:        defaultTranslateBaseURL,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
