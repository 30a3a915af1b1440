package env

import (
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// LoadEnv reads .env into the process environment when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Info("error loading env variables")
	}
}

type ServiceConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

type CollaboratorsConfig struct {
	Face            ServiceConfig `mapstructure:"face"`
	OCR             ServiceConfig `mapstructure:"ocr"`
	Layout          ServiceConfig `mapstructure:"layout"`
	Transliteration ServiceConfig `mapstructure:"transliteration"`
	// UseSpoofClassifier adds the face service's anti-spoofing model to liveness.
	UseSpoofClassifier bool `mapstructure:"use_spoof_classifier"`
}

type PoolConfig struct {
	Size        int `mapstructure:"size"`
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	RateLimitRPS int    `mapstructure:"rate_limit_rps"`
	JWTSecret    string `mapstructure:"jwt_secret"`
	JWTIssuer    string `mapstructure:"jwt_issuer"`
	// AllowedOrigins applies to CORS in release mode.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type StorageConfig struct {
	PostgresURL      string `mapstructure:"postgres_url"`
	MongoURL         string `mapstructure:"mongo_url"`
	MongoDB          string `mapstructure:"mongo_db"`
	RedisAddr        string `mapstructure:"redis_addr"`
	RedisPassword    string `mapstructure:"redis_password"`
	CacheTTLMinutes  int    `mapstructure:"cache_ttl_minutes"`
	AzureAccountName string `mapstructure:"azure_account_name"`
	AzureAccountKey  string `mapstructure:"azure_account_key"`
	AzureContainer   string `mapstructure:"azure_container"`
}

type Config struct {
	Server        ServerConfig               `mapstructure:"server"`
	Pool          PoolConfig                 `mapstructure:"pool"`
	Signals       authenticity.Thresholds    `mapstructure:"signals"`
	Liveness      liveness.Thresholds        `mapstructure:"liveness"`
	Fields        []fieldcompare.FieldConfig `mapstructure:"fields"`
	Collaborators CollaboratorsConfig        `mapstructure:"collaborators"`
	Storage       StorageConfig              `mapstructure:"storage"`
}

func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Pool.TimeoutSecs) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Storage.CacheTTLMinutes) * time.Minute
}

// asMap turns a defaults struct into the nested map viper flattens into keys,
// which makes every threshold overridable from the environment.
func asMap(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func setDefaults(v *viper.Viper) error {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit_rps", 25)
	v.SetDefault("server.jwt_issuer", "ekyc")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("pool.size", runtime.NumCPU())
	v.SetDefault("pool.timeout_secs", 20)
	v.SetDefault("collaborators.use_spoof_classifier", false)
	for _, name := range []string{"face", "ocr", "layout", "transliteration"} {
		v.SetDefault("collaborators."+name+".base_url", "")
		v.SetDefault("collaborators."+name+".api_key", "")
		v.SetDefault("collaborators."+name+".timeout_secs", 15)
	}
	v.SetDefault("storage.mongo_db", "ekyc")
	v.SetDefault("storage.cache_ttl_minutes", 60)
	v.SetDefault("storage.azure_container", "evidence")
	for _, key := range []string{"storage.postgres_url", "storage.mongo_url", "storage.redis_addr",
		"storage.redis_password", "storage.azure_account_name", "storage.azure_account_key", "server.jwt_secret"} {
		v.SetDefault(key, "")
	}

	for key, value := range map[string]interface{}{
		"signals":  authenticity.DefaultThresholds(),
		"liveness": liveness.DefaultThresholds(),
		"fields":   fieldcompare.DefaultFields(),
	} {
		m, err := asMap(value)
		if err != nil {
			return eris.Wrapf(err, "config: defaults for %s", key)
		}
		v.SetDefault(key, m)
	}
	return nil
}

// bindSecrets keeps the service's historical variable names working.
func bindSecrets(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":                {"EKYC_SERVER_PORT", "PORT"},
		"server.jwt_secret":          {"EKYC_SERVER_JWT_SECRET", "JWT_SIGNING_KEY"},
		"server.jwt_issuer":          {"EKYC_SERVER_JWT_ISSUER", "JWT_ISSUER"},
		"pool.size":                  {"EKYC_POOL_SIZE", "WORKER_POOL_SIZE"},
		"pool.timeout_secs":          {"EKYC_POOL_TIMEOUT_SECS", "ANALYSIS_TIMEOUT"},
		"liveness.enabled":           {"EKYC_LIVENESS_ENABLED", "LIVENESS_ENABLED"},
		"storage.postgres_url":       {"EKYC_STORAGE_POSTGRES_URL", "POSTGRES_URL"},
		"storage.mongo_url":          {"EKYC_STORAGE_MONGO_URL", "DB_URL"},
		"storage.mongo_db":           {"EKYC_STORAGE_MONGO_DB", "DB_NAME"},
		"storage.redis_addr":         {"EKYC_STORAGE_REDIS_ADDR", "REDIS_ADDR"},
		"storage.redis_password":     {"EKYC_STORAGE_REDIS_PASSWORD", "REDIS_PASSWORD"},
		"storage.azure_account_name": {"EKYC_STORAGE_AZURE_ACCOUNT_NAME", "AZURE_STORAGE_ACCOUNT_NAME"},
		"storage.azure_account_key":  {"EKYC_STORAGE_AZURE_ACCOUNT_KEY", "AZURE_STORAGE_ACCOUNT_KEY"},
		"storage.azure_container":    {"EKYC_STORAGE_AZURE_CONTAINER", "AZURE_CONTAINER_NAME"},
	}
	for key, names := range bindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return eris.Wrapf(err, "config: bind %s", key)
		}
	}
	return nil
}

// Load reads config.yaml when present, then the environment. Keys map to
// EKYC_ variables with dots replaced by underscores, e.g. EKYC_SIGNALS_MOIRE.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("EKYC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v); err != nil {
		return nil, err
	}
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if cfg.Pool.Size <= 0 {
		cfg.Pool.Size = runtime.NumCPU()
	}
	return &cfg, nil
}
