// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Mail transports.
const (
	TransportGmail = "gmail"
	TransportSMTP  = "smtp"
)

// Config is the full runtime configuration. Values come from the environment
// (a .env file is loaded beforehand) and optionally from a YAML/JSON file.
type Config struct {
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info" yaml:"logLevel"`
	DataDir     string `env:"DATA_DIR" env-default:"data" yaml:"dataDir"`

	Search struct {
		APIKey  string        `env:"GOOGLE_API_KEY" yaml:"apiKey"`
		CSEID   string        `env:"GOOGLE_CSE_ID" yaml:"cseId"`
		Locale  string        `env:"SEARCH_LOCALE" env-default:"in" yaml:"locale"`
		Timeout time.Duration `env:"SEARCH_TIMEOUT" env-default:"20s" yaml:"timeout"`
		// Interval is the minimum spacing between two search calls.
		Interval time.Duration `env:"SEARCH_INTERVAL" env-default:"1s" yaml:"interval"`
	} `yaml:"search"`

	Targets struct {
		Country       string        `env:"TARGET_COUNTRY" env-default:"india" yaml:"country"`
		Industry      string        `env:"TARGET_INDUSTRY" env-default:"fintech" yaml:"industry"`
		CompaniesFile string        `env:"COMPANIES_FILE" yaml:"companiesFile"`
		PageTimeout   time.Duration `env:"PAGE_TIMEOUT" env-default:"15s" yaml:"pageTimeout"`
		PageInterval  time.Duration `env:"PAGE_INTERVAL" env-default:"2s" yaml:"pageInterval"`
		// CompanyInterval is the pause between two companies.
		CompanyInterval time.Duration `env:"COMPANY_INTERVAL" env-default:"3s" yaml:"companyInterval"`
	} `yaml:"targets"`

	Generation struct {
		APIKey   string        `env:"GEMINI_API_KEY" yaml:"apiKey"`
		Model    string        `env:"GEMINI_MODEL" yaml:"model"`
		Timeout  time.Duration `env:"GENERATION_TIMEOUT" env-default:"60s" yaml:"timeout"`
		Interval time.Duration `env:"GENERATION_INTERVAL" env-default:"3s" yaml:"interval"`
	} `yaml:"generation"`

	Sender struct {
		Name           string `env:"SENDER_NAME" env-default:"Your Name" yaml:"name" validate:"required"`
		Email          string `env:"SENDER_EMAIL" env-default:"your.email@gmail.com" yaml:"email" validate:"required,email"`
		Year           string `env:"USER_YEAR" env-default:"Third year" yaml:"year"`
		Experience     string `env:"USER_EXPERIENCE" env-default:"1+ years of project experience" yaml:"experience"`
		Skills         string `env:"USER_SKILLS" env-default:"Python, Machine Learning, Data Analysis" yaml:"skills"`
		CurrentRole    string `env:"CURRENT_ROLE" env-default:"Computer Science Student" yaml:"currentRole"`
		Education      string `env:"EDUCATION" env-default:"B.Tech Computer Science" yaml:"education"`
		Achievements   string `env:"ACHIEVEMENTS" env-default:"Led multiple successful projects" yaml:"achievements"`
		GraduationYear string `env:"GRADUATION_YEAR" env-default:"2026" yaml:"graduationYear"`
	} `yaml:"sender"`

	Mail struct {
		Transport       string        `env:"MAIL_TRANSPORT" env-default:"gmail" yaml:"transport" validate:"oneof=gmail smtp"`
		CredentialsFile string        `env:"GMAIL_CREDENTIALS_FILE" env-default:"gmail_credentials.json" yaml:"credentialsFile"`
		TokenFile       string        `env:"GMAIL_TOKEN_FILE" env-default:"gmail_token.json" yaml:"tokenFile"`
		SMTPAddr        string        `env:"SMTP_ADDR" env-default:"smtp.gmail.com:587" yaml:"smtpAddr"`
		SMTPUsername    string        `env:"SMTP_USERNAME" yaml:"smtpUsername"`
		SMTPPassword    string        `env:"SMTP_PASSWORD" yaml:"smtpPassword"`
		SMTPSecurity    string        `env:"SMTP_SECURITY" env-default:"starttls" yaml:"smtpSecurity" validate:"oneof=starttls tls none"`
		EmailsPerMinute int           `env:"EMAILS_PER_MINUTE" env-default:"5" yaml:"emailsPerMinute" validate:"gt=0"`
		Timeout         time.Duration `env:"MAIL_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"mail"`
}

// MissingKeyError reports mandatory configuration that is absent.
type MissingKeyError struct {
	Keys    []string
	Message string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("config error: %s: missing %s", e.Message, strings.Join(e.Keys, ", "))
}

// Load reads configuration from the environment, or from path when given.
// Environment variables override values in the file.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value formats and ranges. It does not enforce the
// per-command mandatory keys; see RequireSearch and RequireGeneration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Mail.Transport == TransportSMTP && c.Mail.SMTPUsername == "" {
		return &MissingKeyError{Keys: []string{"SMTP_USERNAME"}, Message: "smtp transport requires credentials"}
	}
	return nil
}

// RequireSearch fails when the search service credentials are absent.
func (c *Config) RequireSearch() error {
	var missing []string
	if c.Search.APIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.Search.CSEID == "" {
		missing = append(missing, "GOOGLE_CSE_ID")
	}
	if len(missing) > 0 {
		return &MissingKeyError{Keys: missing, Message: "contact discovery needs search credentials"}
	}
	return nil
}

// RequireGeneration fails when the generative model key is absent.
func (c *Config) RequireGeneration() error {
	if c.Generation.APIKey == "" {
		return &MissingKeyError{Keys: []string{"GEMINI_API_KEY"}, Message: "email generation needs a model key"}
	}
	return nil
}

// SenderProfile returns the sender block as a domain type.
func (c *Config) SenderProfile() types.SenderProfile {
	s := c.Sender
	return types.SenderProfile{
		Name:           s.Name,
		Email:          s.Email,
		Year:           s.Year,
		Experience:     s.Experience,
		Skills:         s.Skills,
		CurrentRole:    s.CurrentRole,
		Education:      s.Education,
		Achievements:   s.Achievements,
		GraduationYear: s.GraduationYear,
	}
}
