package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Stock struct {
		LowStockThreshold int64 `mapstructure:"low_stock_threshold"`
	} `mapstructure:"stock"`

	Predict struct {
		MinMonths int `mapstructure:"min_months"`
	} `mapstructure:"predict"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// Переопределение через ENV (APP_*), напр. APP_POSTGRES_DSN
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("stock.low_stock_threshold", 5)
	v.SetDefault("predict.min_months", 3)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
