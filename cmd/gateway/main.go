package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/internal/device"
	"github.com/kuretru/hass-device-gateway/internal/mqtt"
	"github.com/kuretru/hass-device-gateway/internal/publisher"
	"github.com/kuretru/hass-device-gateway/internal/serializer"
)

const shutdownTimeout = 5 * time.Second

func main() {
	config := loadConfig()
	logger := newLogger(config.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		slog.Error("Gateway: exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config *entity.Config, logger *slog.Logger) error {
	client, err := mqtt.New(&config.MQTT, logger)
	if err != nil {
		return err
	}
	dev, err := newDevice(&config.Device, client, logger)
	if err != nil {
		return err
	}

	if err = client.Connect(ctx); err != nil {
		return err
	}
	if err = publisher.Init(ctx, config.Publishers, dev, client); err != nil {
		client.Stop(context.Background())
		return err
	}
	dev.SetAvailability(true)

	<-ctx.Done()
	slog.Info("Received shutdown signal, exiting gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// A clean disconnect does not fire the last will.
	dev.SetAvailability(false)
	publisher.Stop(shutdownCtx)
	client.Stop(shutdownCtx)
	return nil
}

// newDevice builds the device and configures its optional features before the
// transport connects, so the last will is part of the first connection.
func newDevice(config *entity.DeviceConfig, transport device.Transport, logger *slog.Logger) (*device.Device, error) {
	identity, err := deviceIdentity(config)
	if err != nil {
		return nil, err
	}

	dev := device.New(
		identity,
		device.WithTransport(transport),
		device.WithTopicBuilder(serializer.Topics{DataPrefix: config.DataPrefix}),
		device.WithLogger(logger),
	)
	dev.SetName(config.Name)
	dev.SetManufacturer(config.Manufacturer)
	dev.SetModel(config.Model)
	dev.SetSoftwareVersion(config.SoftwareVersion)
	dev.SetHardwareVersion(config.HardwareVersion)
	dev.SetConfigurationURL(config.ConfigurationURL)

	if _, ok := dev.UniqueID(); !ok {
		return nil, fmt.Errorf("Gateway: device has no unique id")
	}
	if config.ExtendedUniqueIDs {
		dev.EnableExtendedUniqueIDs()
	}
	if config.SharedAvailability {
		if err = dev.EnableSharedAvailability(); err != nil {
			return nil, fmt.Errorf("Gateway: enable shared availability failed, %w", err)
		}
	}
	if config.LastWill {
		dev.EnableLastWill()
	}
	return dev, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
