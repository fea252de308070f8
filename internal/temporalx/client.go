package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/avelldro/converse-backend/internal/platform/envutil"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// NewClient dials Temporal with bounded retry so the process survives the
// server coming up after us. Returns (nil, nil) when TEMPORAL_ADDRESS is
// unset, which disables dispatch.
func NewClient(log *logger.Logger) (temporalsdkclient.Client, error) {
	cfg := LoadConfig()
	if cfg.Address == "" {
		if log != nil {
			log.Warn("TEMPORAL_ADDRESS not set; Temporal disabled")
		}
		return nil, nil
	}

	opts := temporalsdkclient.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    log,
	}

	if cfg.ClientCertPath != "" || cfg.ClientKeyPath != "" || cfg.ClientCAPath != "" {
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.ConnectionOptions.TLS = tlsCfg
	}

	dialTimeout := time.Duration(envutil.Int("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5)) * time.Second
	maxWait := time.Duration(envutil.Int("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60)) * time.Second
	backoff := time.Duration(envutil.Int("TEMPORAL_DIAL_BACKOFF_MS", 250)) * time.Millisecond
	backoffMax := time.Duration(envutil.Int("TEMPORAL_DIAL_BACKOFF_MAX_MS", 5000)) * time.Millisecond

	deadline := time.Now().Add(maxWait)
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		c, err := temporalsdkclient.DialContext(ctx, opts)
		cancel()
		if err == nil {
			if log != nil && attempt > 1 {
				log.Info("Connected to Temporal", "address", cfg.Address, "namespace", cfg.Namespace, "attempts", attempt)
			}
			return c, nil
		}

		if maxWait <= 0 || time.Now().After(deadline) {
			return nil, fmt.Errorf("temporal dial failed (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
		}

		if log != nil {
			log.Warn("Temporal not reachable; retrying", "address", cfg.Address, "namespace", cfg.Namespace, "attempt", attempt, "error", err)
		}
		if sleep := clampBackoff(backoff, backoffMax, attempt); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return nil, fmt.Errorf("temporal tls: both TEMPORAL_CLIENT_CERT_PATH and TEMPORAL_CLIENT_KEY_PATH are required when enabling mTLS")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: load client cert/key: %w", err)
	}
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.ClientCAPath != "" {
		pem, err := os.ReadFile(cfg.ClientCAPath)
		if err != nil {
			return nil, fmt.Errorf("temporal tls: read CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("temporal tls: invalid CA pem")
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

func clampBackoff(base time.Duration, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
