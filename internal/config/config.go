package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for admin auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// MailchimpConfig holds audience credentials for the list relay.
type MailchimpConfig struct {
	APIKey       string
	ServerPrefix string
	ListID       string
	BaseURL      string
}

// Enabled reports whether all three credentials are present.
func (m MailchimpConfig) Enabled() bool {
	return m.APIKey != "" && m.ServerPrefix != "" && m.ListID != ""
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	PublicDir         string
	SiteURL           string
	InquiryLogPath    string
	AllowedOrigins    []string
	Mailchimp         MailchimpConfig
	WebhookURL        string
	RelayTimeout      time.Duration
	MongoURI          string
	MongoDatabase     string
	InquiryCollection string
	Timeout           time.Duration
	NodeID            int64
	ServerLog         *log.Logger
	JWTConfigs        []JWTConfig
	JWTAudience       string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":" + envOrDefault("PORT", "3000")
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "inquiry-admin"),
			Secret: []byte(secret),
		})
	}

	nodeID := int64(1)
	if raw := strings.TrimSpace(os.Getenv("NODE_ID")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}

	cfg := Config{
		Addr:           addr,
		PublicDir:      envOrDefault("PUBLIC_DIR", "public"),
		SiteURL:        strings.TrimSpace(os.Getenv("SITE_URL")),
		InquiryLogPath: envOrDefault("INQUIRY_LOG_PATH", "data/inquiries.json"),
		AllowedOrigins: parseList("ALLOWED_ORIGINS", nil),
		Mailchimp: MailchimpConfig{
			APIKey:       strings.TrimSpace(os.Getenv("MAILCHIMP_API_KEY")),
			ServerPrefix: strings.TrimSpace(os.Getenv("MAILCHIMP_SERVER_PREFIX")),
			ListID:       strings.TrimSpace(os.Getenv("MAILCHIMP_LIST_ID")),
			BaseURL:      strings.TrimSpace(os.Getenv("MAILCHIMP_BASE_URL")),
		},
		WebhookURL:        strings.TrimSpace(os.Getenv("INQUIRY_WEBHOOK_URL")),
		RelayTimeout:      durationOrDefault("RELAY_TIMEOUT", 10*time.Second),
		MongoURI:          strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:     envOrDefault("MONGO_DB", "inquiries"),
		InquiryCollection: envOrDefault("INQUIRY_COLLECTION", "inquiries"),
		Timeout:           durationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		NodeID:            nodeID,
		ServerLog:         log.New(os.Stdout, "[inquiry-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:        jwtConfigs,
		JWTAudience:       strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
	}

	cfg.ServerLog.Printf("loaded config: addr=%q mailchimp=%t webhook=%t mongo=%t origins=%q",
		cfg.Addr, cfg.Mailchimp.Enabled(), cfg.WebhookURL != "", cfg.MongoURI != "", cfg.AllowedOrigins)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
