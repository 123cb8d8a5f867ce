package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la consola (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Display DisplayConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig configuración de la API REST remota que consume la consola.
type APIConfig struct {
	BaseURL string        // origen, ej. https://api.ejemplo.com (se le añade /api/v1)
	Timeout time.Duration // 0 = sin timeout propio, se respeta solo el context
}

// Endpoint devuelve el origen con el prefijo /api/v1 sin barra final.
func (c APIConfig) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.HasSuffix(base, "/api/v1") {
		return base
	}
	return base + "/api/v1"
}

// JWTConfig configuración de JWT.
// La consola no emite tokens; Secret es opcional y solo sirve para verificar la firma
// cuando el despliegue comparte el secreto con la API.
type JWTConfig struct {
	Secret string
}

// HTTPConfig configuración del servidor HTTP de la consola.
type HTTPConfig struct {
	Host        string
	Port        int
	SwaggerFile string // vacío = sin /docs
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DisplayConfig opciones de presentación de montos.
type DisplayConfig struct {
	Currency string // ISO 4217, ej. IDR, USD, COP
	Locale   string // BCP 47, ej. id-ID, es-CO
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, HTTP_PORT, etc.
func Load() (*Config, error) {
	// .env opcional; las variables ya definidas en el entorno no se sobrescriben
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "loyalty-console"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: getString(v, "API_BASE_URL", "http://localhost:5000"),
			Timeout: time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 3000),
			SwaggerFile: getString(v, "SWAGGER_FILE", ""),
		},
		Display: DisplayConfig{
			Currency: getString(v, "CONSOLE_CURRENCY", "IDR"),
			Locale:   getString(v, "CONSOLE_LOCALE", "id-ID"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL requerido")
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("config: HTTP_PORT inválido (%d)", c.HTTP.Port)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config: API_TIMEOUT_SECONDS no puede ser negativo")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
