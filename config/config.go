package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	DB struct {
		Path string
	} `mapstructure:"db"`

	Import struct {
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"import"`

	Scanner struct {
		ThrottleMs int `mapstructure:"throttle_ms"`
	} `mapstructure:"scanner"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", "./stocktake.db")
	v.SetDefault("import.batch_size", 800)
	v.SetDefault("scanner.throttle_ms", 800)
}

// Load reads the config file, with STOCKTAKE_* env overrides. A missing
// file is an error the caller may downgrade to the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STOCKTAKE")
	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return Default(), err
	}
	if err := v.Unmarshal(&c); err != nil {
		return Default(), err
	}
	return c, nil
}

// Default is the configuration used when no file is present.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}
