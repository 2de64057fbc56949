package configuration

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ServerConfiguration holds the file-based settings of the session server.
type ServerConfiguration struct {
	Address      string        `mapstructure:"address"`
	ProviderURL  string        `mapstructure:"provider_url"`
	EndUserIP    string        `mapstructure:"end_user_ip"`
	RedirectURL  string        `mapstructure:"redirect_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Default config instance
var config *ServerConfiguration

// GetInstance returns the initialized config object. If there is no initialized object, it returns an error
func GetInstance() (*ServerConfiguration, error) {
	if config == nil {
		return nil, errors.New("cannot get instance of uninitialized config")
	}
	return config, nil
}

// Initialize is the default way of initializing the config. It sets the global config variable and makes sure
// the app can access the config object through the whole application
func Initialize(path, filename string) (err error) {
	config, err = LoadConfigFromFile(path, filename)
	return
}

// LoadConfigFromFile loads a yaml config file from path with defaults applied.
func LoadConfigFromFile(path, filename string) (*ServerConfiguration, error) {
	config := ServerConfiguration{}
	config.SetDefaults()
	if err := config.LoadFromFile(path, filename); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFromFile reads the yaml file and unmarshals it over the current values.
func (config *ServerConfiguration) LoadFromFile(path, filename string) error {
	logrus.Infof("Loading config from %s/%s.yaml", path, filename)
	viper.AddConfigPath(path)
	viper.SetConfigName(filename)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	if err := viper.Unmarshal(&config); err != nil {
		return err
	}
	return nil
}

// SetDefaults applies the default values.
func (config *ServerConfiguration) SetDefaults() {
	config.Address = "localhost:1323"
	config.ProviderURL = "https://localhost:7080"
	config.EndUserIP = "0.0.0.0"
	config.RedirectURL = "http://127.0.0.1:5173/"
	config.PollInterval = 2 * time.Second
}

// Validate checks the configuration for inconsistencies.
func (config *ServerConfiguration) Validate() error {
	if config.ProviderURL == "" {
		return errors.New("providerUrl is required")
	}
	return nil
}
