package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
)

const appDirName = "fdg-inventory"

// clientConfig is the YAML configuration of the terminal client.
type clientConfig struct {
	Endpoint           string `yaml:"endpoint"`
	Path               string `yaml:"path"`
	Shape              string `yaml:"shape"`
	FailureMessage     string `yaml:"failure_message"`
	ServerErrorMessage string `yaml:"server_error_message"`
	LogoutPath         string `yaml:"logout_path"`
	StorePath          string `yaml:"store_path"`
	LogFile            string `yaml:"log_file"`
	LogLevel           string `yaml:"log_level"`
}

func defaultClientConfig() clientConfig {
	dir := configDir()
	return clientConfig{
		Endpoint:   "http://localhost:8080",
		Path:       loginform.DefaultPath,
		Shape:      string(loginform.ShapeToken),
		LogoutPath: "/api/users/logout",
		StorePath:  filepath.Join(dir, "session.db"),
		LogFile:    filepath.Join(dir, "client.log"),
		LogLevel:   "info",
	}
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appDirName)
}

// defaultConfigPath is ~/.config/fdg-inventory/client.yaml on Linux.
func defaultConfigPath() string {
	return filepath.Join(configDir(), "client.yaml")
}

// loadClientConfig reads path over the defaults. A missing file is not an error
// unless the path was given explicitly.
func loadClientConfig(path string, explicit bool) (clientConfig, error) {
	cfg := defaultClientConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// formConfig converts the client configuration into the login form contract.
func (c clientConfig) formConfig() (loginform.Config, error) {
	shape, err := loginform.ParseShape(c.Shape)
	if err != nil {
		return loginform.Config{}, err
	}
	return loginform.Config{
		Endpoint:           c.Endpoint,
		Path:               c.Path,
		Shape:              shape,
		FailureMessage:     c.FailureMessage,
		ServerErrorMessage: c.ServerErrorMessage,
	}, nil
}
