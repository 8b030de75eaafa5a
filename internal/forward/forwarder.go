// Package forward hands the structured profile encoding to the downstream
// image-selection service over NATS. It is a thin boundary adapter: the
// profiler's obligation ends at producing a valid encoding, and everything
// past the publish (selection, image retrieval) belongs to the consumer.
package forward

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/stone-age-io/hwprobe/internal/config"
	"go.uber.org/zap"
)

// Forwarder manages the NATS connection used to publish profiles.
type Forwarder struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// New connects to NATS with the configured authentication and transport
// security and returns a ready forwarder.
func New(cfg *config.PublishConfig, deviceID string, logger *zap.Logger) (*Forwarder, error) {
	name := "hwprobe"
	if deviceID != "" {
		name = "hwprobe-" + deviceID
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			} else {
				logger.Info("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	if cfg.NATS.TLS.Enabled {
		tlsConfig, err := createTLSConfig(&cfg.NATS.TLS, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
		if cfg.NATS.TLS.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is DISABLED - development use only")
		}
	}

	switch cfg.NATS.Auth.Type {
	case "creds":
		logger.Info("Using credentials file authentication", zap.String("file", cfg.NATS.Auth.CredsFile))
		opts = append(opts, nats.UserCredentials(cfg.NATS.Auth.CredsFile))
	case "token":
		logger.Info("Using token authentication")
		opts = append(opts, nats.Token(cfg.NATS.Auth.Token))
	case "userpass":
		logger.Info("Using username/password authentication", zap.String("username", cfg.NATS.Auth.Username))
		opts = append(opts, nats.UserInfo(cfg.NATS.Auth.Username, cfg.NATS.Auth.Password))
	case "none":
		logger.Info("Using no authentication")
	default:
		return nil, fmt.Errorf("invalid auth type: %s", cfg.NATS.Auth.Type)
	}

	serverURLs := strings.Join(cfg.NATS.URLs, ",")
	logger.Info("Connecting to NATS", zap.Strings("urls", cfg.NATS.URLs))
	conn, err := nats.Connect(serverURLs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS",
		zap.String("url", conn.ConnectedUrl()),
		zap.String("server_id", conn.ConnectedServerId()))

	return &Forwarder{
		conn:    conn,
		subject: cfg.Subject,
		logger:  logger,
	}, nil
}

// Publish sends one encoded profile. The payload is the stable structured
// encoding produced by the report layer; the forwarder never inspects it.
func (f *Forwarder) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.conn.Publish(f.subject, payload); err != nil {
		return fmt.Errorf("failed to publish profile: %w", err)
	}
	if err := f.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush profile publish: %w", err)
	}
	f.logger.Info("Profile forwarded",
		zap.String("subject", f.subject),
		zap.Int("bytes", len(payload)))
	return nil
}

// Drain waits for in-flight messages before closing the connection.
func (f *Forwarder) Drain(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- f.conn.Drain()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		f.conn.Close()
		return fmt.Errorf("drain timed out: %w", ctx.Err())
	}
}

// Close terminates the connection immediately.
func (f *Forwarder) Close() {
	f.conn.Close()
}

func createTLSConfig(cfg *config.TLSConfig, logger *zap.Logger) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
		logger.Debug("Loaded CA certificate", zap.String("file", cfg.CAFile))
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
		logger.Debug("Loaded client certificate", zap.String("file", cfg.CertFile))
	}

	return tlsConfig, nil
}
