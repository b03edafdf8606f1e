package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/kuretru/hass-device-gateway/entity"
)

const envPrefix = "GATEWAY_"

func loadConfig() *entity.Config {
	configFilePath := flag.String("config", "./configs/gateway.yaml", "Config file path")
	flag.Parse()
	if configFilePath == nil || *configFilePath == "" {
		_, _ = fmt.Fprintf(os.Stderr, "Config file not provide")
		os.Exit(2)
	}
	if _, err := os.Stat(*configFilePath); err != nil {
		if os.IsNotExist(err) {
			_, _ = fmt.Fprintf(os.Stderr, "Config file not exist")
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "Stat config file failed, %v", err)
		}
		os.Exit(3)
	}

	config, err := readConfig(*configFilePath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v", err)
		os.Exit(3)
	}
	return config
}

// readConfig reads the YAML file at path, then applies GATEWAY_* environment overrides.
func readConfig(path string) (*entity.Config, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Read config file failed, %w", err)
	}
	var config entity.Config
	if err = yaml.Unmarshal(configBytes, &config); err != nil {
		return nil, fmt.Errorf("Unmarshal config file failed, %w", err)
	}
	if err = applyEnv(&config); err != nil {
		return nil, fmt.Errorf("Parse environment failed, %w", err)
	}
	applyDefaults(&config)
	return &config, nil
}

func applyEnv(config *entity.Config) error {
	if err := env.ParseWithOptions(&config.MQTT, env.Options{Prefix: envPrefix + "MQTT_"}); err != nil {
		return err
	}
	if err := env.ParseWithOptions(&config.Device, env.Options{Prefix: envPrefix + "DEVICE_"}); err != nil {
		return err
	}
	if level, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		config.LogLevel = level
	}
	return nil
}

func applyDefaults(config *entity.Config) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if len(config.Publishers) == 0 {
		config.Publishers = []*entity.PublisherConfig{{Type: "hass_mqtt"}}
	}
}
