package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/radiocfg/at"
	"i4.energy/across/radiocfg/radio"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the modem is attached to")
	flag.Int("baud-rate", 9600, "Baud rate the modem currently talks at")
	flag.Int("target-baud", 0, "Baud rate to program into the modem")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("bind-address", "", "Bind address for the HTTP API (empty disables it)")
	flag.Bool("console", false, "Start an interactive AT console instead of reconfiguring")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	transport, err := radio.OpenSerial(config.SerialPort, config.BaudRate)
	if err != nil {
		logger.Error("Failed to open serial port", "error", err, "port", config.SerialPort)
		os.Exit(1)
	}
	defer transport.Close()

	switch {
	case config.Console:
		runConsole(transport, logger)

	case config.BindAddress != "":
		runServer(config.BindAddress, transport, logger)

	default:
		if config.TargetBaud == 0 {
			logger.Error("No target baud rate specified", "supported", at.SupportedRates())
			os.Exit(1)
		}

		session := radio.NewSession(transport, radio.Config{
			Logger: logger.With("component", "session"),
		})
		if err := session.Reconfigure(context.Background(), config.TargetBaud); err != nil {
			var stepErr *radio.StepError
			if errors.As(err, &stepErr) {
				logger.Error("Reconfiguration failed", "step", stepErr.Step.String(), "error", stepErr.Err)
			} else {
				logger.Error("Reconfiguration failed", "error", err)
			}
			os.Exit(1)
		}
		logger.Info("Modem reconfigured", "rate", config.TargetBaud)
	}
}

// runServer exposes the reconfiguration procedure over HTTP until
// interrupted.
func runServer(bindAddress string, transport radio.Transport, logger *slog.Logger) {
	httpServer := &http.Server{
		Addr: bindAddress,
		Handler: &Server{
			Logger:    logger.With("component", "server"),
			Transport: transport,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
