package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Fuentes de catálogo soportadas.
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
	CatalogSourceSQLite   = "sqlite"
)

// Config agrupa la configuración de la aplicación (Viper sobre env y archivo opcional).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	JWT     JWTConfig
	Catalog CatalogConfig
	Form    FormConfig
	Scanner ScannerConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve DATABASE_URL si está definido; si no, el DSN construido.
// Acepta el esquema "postgres://" que usan algunos proveedores.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN construye el connection string con URL encoding para la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// CatalogConfig indica de dónde se carga el catálogo de productos al abrir un formulario.
type CatalogConfig struct {
	Source     string // file | postgres | sqlite
	Path       string // archivo .json / .yaml cuando Source = file
	SQLitePath string
}

// FormConfig comportamiento de los formularios de factura.
type FormConfig struct {
	// KeepPlaceholderRow: al quitar la única fila se limpia en lugar de borrarla.
	KeepPlaceholderRow bool
	MaxOpenForms       int
}

// ScannerConfig parámetros del escáner de códigos de barras.
type ScannerConfig struct {
	FPS               int
	QRBoxSize         int
	DecodesPerSecond  float64
	DuplicateCooldown time.Duration
	StopTimeout       time.Duration
}

// Load lee la configuración. Primero carga .env al entorno (godotenv) y luego
// Viper lee archivo + variables de entorno; las variables de entorno tienen prioridad.
func Load() (*Config, error) {
	_ = godotenv.Load() // sin .env no es error

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "invoice-entry"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "invoices"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "invoice-entry"),
		},
		Catalog: CatalogConfig{
			Source:     strings.ToLower(getString(v, "CATALOG_SOURCE", CatalogSourceFile)),
			Path:       getString(v, "CATALOG_PATH", "./catalog.yaml"),
			SQLitePath: getString(v, "CATALOG_SQLITE_PATH", "./app.db"),
		},
		Form: FormConfig{
			KeepPlaceholderRow: getBool(v, "FORM_KEEP_PLACEHOLDER_ROW", true),
			MaxOpenForms:       getInt(v, "FORM_MAX_OPEN", 500),
		},
		Scanner: ScannerConfig{
			FPS:               getInt(v, "SCANNER_FPS", 10),
			QRBoxSize:         getInt(v, "SCANNER_QRBOX", 250),
			DecodesPerSecond:  getFloat(v, "SCANNER_DECODES_PER_SECOND", 4),
			DuplicateCooldown: getDuration(v, "SCANNER_DUPLICATE_COOLDOWN", 1500*time.Millisecond),
			StopTimeout:       getDuration(v, "SCANNER_STOP_TIMEOUT", 3*time.Second),
		},
	}

	switch cfg.Catalog.Source {
	case CatalogSourceFile, CatalogSourcePostgres, CatalogSourceSQLite:
	default:
		return nil, fmt.Errorf("CATALOG_SOURCE desconocido: %q", cfg.Catalog.Source)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return d
}
