package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	FormAPI FormAPIConfig `yaml:"form_api"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Redis   RedisConfig   `yaml:"redis"`
	Scream  ScreamConfig  `yaml:"scream"`
}

// FormAPIConfig points at the external form-service submissions endpoint.
// With an empty APIKey the app boots against the built-in fake client.
type FormAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	FormID  string `yaml:"form_id"`
}

type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	LookupResolvedTopicName string `yaml:"lookup_resolved_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ScreamConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// TTL of the per-session "last order number" key used to pre-fill the
	// lookup input on the next visit.
	LastOrderTTLSeconds int `yaml:"last_order_ttl_seconds"`

	// StatusFromSubmission advances the timeline from the status text found in
	// the submission instead of pinning every order to medical review.
	StatusFromSubmission bool `yaml:"status_from_submission"`

	// Printf template with one %s for the carrier tracking number.
	CarrierTrackURL string `yaml:"carrier_track_url"`

	LookupRateLimitPerMinute int `yaml:"lookup_rate_limit_per_minute"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
