package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Shopify  Shopify  `yaml:"shopify"`
	Xero     Xero     `yaml:"xero"`
	Sync     Sync     `yaml:"sync"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"xero-shopify-sync"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"stocksync_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Shopify struct {
	StoreDomain   string `yaml:"store_domain" env:"SHOPIFY_STORE_DOMAIN"`
	AccessToken   string `yaml:"access_token" env:"SHOPIFY_ACCESS_TOKEN"`
	WebhookSecret string `yaml:"webhook_secret" env:"SHOPIFY_API_SECRET"`
	AppServer     string `yaml:"app_server" env:"SHOPIFY_APP_SERVER"`
	APIVersion    string `yaml:"api_version" env:"SHOPIFY_API_VERSION" env-default:"2024-04"`
}

type Xero struct {
	ClientID           string `yaml:"client_id" env:"XERO_CLIENT_ID"`
	ClientSecret       string `yaml:"client_secret" env:"XERO_CLIENT_SECRET"`
	RedirectURI        string `yaml:"redirect_uri" env:"XERO_REDIRECT_URI"`
	PaymentAccountCode string `yaml:"payment_account_code" env:"XERO_PAYMENT_ACCOUNT" env-default:"090"`
}

// Sync carries the knobs that used to be process-wide constants: account
// codes, the SKU prefix and the TTLs for the dedup window and the
// expectation ledger.
type Sync struct {
	SKUPrefix          string        `yaml:"sku_prefix" env:"SYNC_SKU_PREFIX" env-default:"STX"`
	DedupTTL           time.Duration `yaml:"dedup_ttl" env:"SYNC_DEDUP_TTL" env-default:"10m"`
	ExpectationTTL     time.Duration `yaml:"expectation_ttl" env:"SYNC_EXPECTATION_TTL" env-default:"10m"`
	AssetAccountCode   string        `yaml:"asset_account_code" env:"SYNC_ASSET_ACCOUNT" env-default:"1400"`
	COGSAccountCode    string        `yaml:"cogs_account_code" env:"SYNC_COGS_ACCOUNT" env-default:"5000"`
	SalesAccountCode   string        `yaml:"sales_account_code" env:"SYNC_SALES_ACCOUNT" env-default:"4000"`
	ReconcileDecreases bool          `yaml:"reconcile_decreases" env:"SYNC_RECONCILE_DECREASES" env-default:"false"`
	InternalToken      string        `yaml:"internal_token" env:"SYNC_INTERNAL_TOKEN"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
