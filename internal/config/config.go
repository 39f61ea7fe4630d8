package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	SeedFile    string `env:"SEED_FILE"`

	Identity Identity `envPrefix:"IDENTITY_"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	URL    string `env:"DATABASE_URL" envDefault:"buybizz.db"`
}

// Identity holds the settings shared with the external identity provider.
type Identity struct {
	JWTSecret     string `env:"JWT_SECRET"`
	Issuer        string `env:"ISSUER"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
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
