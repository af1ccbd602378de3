package config

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	RunAddress     string
	DatabaseURI    string
	NATSURL        string
	NATSSubject    string
	RedisAddr      string
	SecretKey      string
	PollInterval   time.Duration
	PoolInterval   time.Duration
	AlertTimeout   time.Duration
	RequestTimeout time.Duration
	Sound          string
	Logger         *zap.SugaredLogger
}

func NewConfig() *Config {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout", "rider.log"}

	logger := zap.Must(logCfg.Build())

	cfg := &Config{}
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "local API address")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "backend DB connection string")
	flag.StringVar(&cfg.NATSURL, "n", "", "NATS server URL for the order feed (empty uses LISTEN/NOTIFY)")
	flag.StringVar(&cfg.NATSSubject, "subject", "orders.available", "NATS subject carrying order events")
	flag.StringVar(&cfg.RedisAddr, "r", "", "Redis address for session storage (empty keeps it in memory)")
	flag.StringVar(&cfg.SecretKey, "k", "rider-secret", "token signing key")
	flag.DurationVar(&cfg.PollInterval, "poll", 5*time.Second, "new order poll interval")
	flag.DurationVar(&cfg.PoolInterval, "pool", 10*time.Second, "order pool refresh interval")
	flag.DurationVar(&cfg.AlertTimeout, "alert-timeout", 30*time.Second, "how long a new order alert stays up")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 10*time.Second, "backend call timeout")
	flag.StringVar(&cfg.Sound, "sound", "bell", "alert sound: bell, log or off")
	flag.Parse()

	cfg.Logger = logger.Sugar()

	ReadEnvironment(cfg)

	return cfg
}

func ReadEnvironment(cfg *Config) {
	if runAddress := os.Getenv("RUN_ADDRESS"); runAddress != "" {
		cfg.RunAddress = runAddress
	}

	if databaseURI := os.Getenv("DATABASE_URI"); databaseURI != "" {
		cfg.DatabaseURI = databaseURI
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATSURL = natsURL
	}

	if subject := os.Getenv("NATS_SUBJECT"); subject != "" {
		cfg.NATSSubject = subject
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}

	if key := os.Getenv("SECRET_KEY"); key != "" {
		cfg.SecretKey = key
	}

	if sound := os.Getenv("SOUND"); sound != "" {
		cfg.Sound = sound
	}

	readDuration("POLL_INTERVAL", &cfg.PollInterval)
	readDuration("POOL_INTERVAL", &cfg.PoolInterval)
	readDuration("ALERT_TIMEOUT", &cfg.AlertTimeout)
	readDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
}

// readDuration ignores values that do not parse or are not positive.
func readDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return
	}
	*dst = d
}
