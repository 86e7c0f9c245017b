package configflags

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	v1 "github.com/lifeos/lifeos/pkg/apis/config/v1"
)

// ConfigFlags holds the location of the LifeOS configuration file.
type ConfigFlags struct {
	Path string
}

func NewConfigFlags() *ConfigFlags {
	return &ConfigFlags{}
}

func (f *ConfigFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path,
		"config",
		f.Path,
		"Configuration file for LifeOS; defaults apply when unset")
}

func (f *ConfigFlags) GetConfig() (*v1.LifeOSConfig, error) {
	config := v1.LifeOSConfig{}
	config.Server.BaseURL = "http://localhost:8080"
	config.Uploads.Dir = "uploads"
	config.Uploads.MaxImageBytes = 5 * 1024 * 1024

	if f.Path != "" {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.WithMessage(err, "could not load config")
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.WithMessage(err, "couldn't unmarshal config")
		}
	}

	return &config, nil
}
