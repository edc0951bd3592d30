package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Delivery     DeliveryConfig
	Dispatch     DispatchConfig
	Maps         MapsConfig
	Stripe       StripeConfig
	PayMongo     PayMongoConfig
	PayPal       PayPalConfig
	TrackLimit   TrackRateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KAON_APP_ENV" required:"true"`
	Port         string `envconfig:"KAON_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KAON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KAON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KAON_DB_DSN"`
	Driver string `envconfig:"KAON_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KAON_DB_HOST"`
	Port     int    `envconfig:"KAON_DB_PORT" default:"5432"`
	User     string `envconfig:"KAON_DB_USER"`
	Password string `envconfig:"KAON_DB_PASSWORD"`
	Name     string `envconfig:"KAON_DB_NAME"`
	SSLMode  string `envconfig:"KAON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KAON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KAON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KAON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KAON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KAON_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KAON_REDIS_ADDR"`
	Password     string        `envconfig:"KAON_REDIS_PASSWORD"`
	DB           int           `envconfig:"KAON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KAON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KAON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KAON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KAON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KAON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KAON_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KAON_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KAON_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KAON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KAON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KAON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KAON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KAON_ARGON_KEY_LEN" default:"32"`
}

// CheckoutConfig carries the money and timing knobs applied at order
// creation and edit time. Amounts are whole currency units.
type CheckoutConfig struct {
	CancelWindow      time.Duration `envconfig:"KAON_CHECKOUT_CANCEL_WINDOW" default:"5m"`
	PriorityFee       int           `envconfig:"KAON_CHECKOUT_PRIORITY_FEE" default:"50"`
	LoyaltyPointsPer  int           `envconfig:"KAON_LOYALTY_POINTS_PER_UNIT" default:"2"`
	LoyaltyAccrualPer int           `envconfig:"KAON_LOYALTY_ACCRUAL_PER" default:"20"`
}

// DeliveryConfig holds the hub origin and the distance fee tiers. Tiers is a
// comma list of maxKm:fee pairs in ascending km order, e.g. "2:49,5:69,8:99";
// distances past the last tier pay BeyondTierFee.
type DeliveryConfig struct {
	HubLat        float64 `envconfig:"KAON_DELIVERY_HUB_LAT" required:"true"`
	HubLng        float64 `envconfig:"KAON_DELIVERY_HUB_LNG" required:"true"`
	Tiers         string  `envconfig:"KAON_DELIVERY_FEE_TIERS" default:"2:49,5:69,8:99"`
	BeyondTierFee int     `envconfig:"KAON_DELIVERY_BEYOND_TIER_FEE" default:"129"`
	// DriverCommission is the platform's cut of the delivery fee; drivers
	// accrue the remainder per delivered order.
	DriverCommission decimal.Decimal `envconfig:"KAON_DELIVERY_DRIVER_COMMISSION" default:"0.20"`
}

type DispatchConfig struct {
	PushInterval time.Duration `envconfig:"KAON_DISPATCH_PUSH_INTERVAL" default:"15s"`
	OfflineAfter time.Duration `envconfig:"KAON_DISPATCH_OFFLINE_AFTER" default:"2m"`
}

type MapsConfig struct {
	APIKey  string        `envconfig:"KAON_MAPS_API_KEY"`
	BaseURL string        `envconfig:"KAON_MAPS_BASE_URL"`
	Timeout time.Duration `envconfig:"KAON_MAPS_TIMEOUT" default:"10s"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"KAON_STRIPE_API_KEY"`
	SuccessURL string `envconfig:"KAON_STRIPE_SUCCESS_URL"`
	CancelURL  string `envconfig:"KAON_STRIPE_CANCEL_URL"`
}

type PayMongoConfig struct {
	SecretKey   string `envconfig:"KAON_PAYMONGO_SECRET_KEY"`
	BaseURL     string `envconfig:"KAON_PAYMONGO_BASE_URL"`
	RedirectURL string `envconfig:"KAON_PAYMONGO_REDIRECT_URL"`
}

type PayPalConfig struct {
	ClientID  string `envconfig:"KAON_PAYPAL_CLIENT_ID"`
	Secret    string `envconfig:"KAON_PAYPAL_SECRET"`
	BaseURL   string `envconfig:"KAON_PAYPAL_BASE_URL"`
	ReturnURL string `envconfig:"KAON_PAYPAL_RETURN_URL"`
	CancelURL string `envconfig:"KAON_PAYPAL_CANCEL_URL"`
}

// TrackRateLimitConfig bounds the phone-gated customer tracking reads.
type TrackRateLimitConfig struct {
	Window time.Duration `envconfig:"KAON_TRACK_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"KAON_TRACK_RATE_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KAON_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
