package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"store.db"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CORSOrigin  string `env:"CORS_ORIGIN"`

	JWT        JWT        `envPrefix:"JWT_"`
	Crypto     Crypto     `envPrefix:"CRYPTO_"`
	SMTP       SMTP       `envPrefix:"SMTP_"`
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Backblaze  Backblaze  `envPrefix:"B2_"`
}

type JWT struct {
	Secret       string `env:"SECRET"`
	ExpiryHours  int    `env:"EXPIRY_HOURS" envDefault:"168"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

type Crypto struct {
	// 32-byte AES key, hex encoded (64 hex chars). Changing it makes every
	// previously stored secret undecryptable.
	AESKeyHex string `env:"AES_KEY"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type Cloudinary struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

type Backblaze struct {
	BaseApiURL     string `env:"BASE_API_URL" envDefault:"https://api.backblazeb2.com"`
	KeyID          string `env:"KEY_ID"`
	ApplicationKey string `env:"APPLICATION_KEY"`
	BucketID       string `env:"BUCKET_ID"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
