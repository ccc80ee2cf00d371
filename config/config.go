package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/aws"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

const (
	defaultPath             = "."
	defaultPort             = 8080
	defaultIdempotencyTTL   = 48 * time.Hour
	defaultNotifierLatency  = time.Second
	defaultMetricsNamespace = "GlucoseGuard"
)

// Notifier providers
const (
	ProviderSimulated = "simulated"
	ProviderSQS       = "sqs"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int  `json:"port" yaml:"port"`
		RunLocal bool `json:"runLocal" yaml:"runLocal"`
	} `json:"http" yaml:"http"`

	AWS aws.Settings `json:"aws" yaml:"aws"`

	Idempotency IdempotencyConfig `json:"idempotency" yaml:"idempotency"`

	Notifier NotifierConfig `json:"notifier" yaml:"notifier"`

	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	Checkout CheckoutConfig `json:"checkout" yaml:"checkout"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// IdempotencyConfig points at the DynamoDB table guarding commits and
// notification deliveries. An empty table keeps the guard in memory.
type IdempotencyConfig struct {
	Table string        `json:"table" yaml:"table"`
	TTL   time.Duration `json:"ttl" yaml:"ttl"`
}

// NotifierConfig selects how escalation messages leave the service.
type NotifierConfig struct {
	// Provider is "simulated" (log only) or "sqs" (queue for the worker).
	Provider    string        `json:"provider" yaml:"provider"`
	QueueURL    string        `json:"queueURL" yaml:"queueURL"`
	FailureRate float64       `json:"failureRate" yaml:"failureRate"`
	Latency     time.Duration `json:"latency" yaml:"latency"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

type CheckoutConfig struct {
	DeliveryEstimate time.Duration     `json:"deliveryEstimate" yaml:"deliveryEstimate"`
	Thresholds       health.Thresholds `json:"thresholds" yaml:"thresholds"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			break
		}
	}
	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Convert ENV_VAR_NAME to a path aligned with existing YAML keys.
	// Example: NOTIFIER_QUEUEURL -> notifier.queueURL
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads config/config.yaml with environment overrides.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = defaultPort
	}
	if c.Idempotency.TTL == 0 {
		c.Idempotency.TTL = defaultIdempotencyTTL
	}
	if strings.TrimSpace(c.Notifier.Provider) == "" {
		c.Notifier.Provider = ProviderSimulated
	}
	if c.Notifier.Latency == 0 {
		c.Notifier.Latency = defaultNotifierLatency
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaultMetricsNamespace
	}
	c.Checkout.Thresholds = c.Checkout.Thresholds.WithDefaults()
}

// Validate rejects combinations the service can not run with.
func (c *Config) Validate() error {
	switch c.Notifier.Provider {
	case ProviderSimulated:
	case ProviderSQS:
		if c.Notifier.QueueURL == "" {
			return errors.New("notifier.queueURL is required for the sqs provider")
		}
	default:
		return errors.Errorf("unknown notifier provider %q", c.Notifier.Provider)
	}
	if c.Notifier.FailureRate < 0 || c.Notifier.FailureRate > 1 {
		return errors.Errorf("notifier.failureRate %v is outside [0,1]", c.Notifier.FailureRate)
	}
	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
