package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
//
// GeminiAPIKey is optional: without it the service starts but card
// generation reports itself as unavailable.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"           validate:"required"`
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"omitempty,file"`
	MaxRetries         int    `mapstructure:"max_retries"          validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"  validate:"gte=1,lte=60"`
}

// GenerationConfig bounds the document-to-cards workflow.
type GenerationConfig struct {
	MaxDocumentBytes     int64 `mapstructure:"max_document_bytes"     validate:"gt=0"`
	MinDocumentChars     int   `mapstructure:"min_document_chars"     validate:"gte=1"`
	MaxQuestionCount     int   `mapstructure:"max_question_count"     validate:"gte=1,lte=200"`
	DefaultQuestionCount int   `mapstructure:"default_question_count" validate:"gte=1,ltefield=MaxQuestionCount"`
}
