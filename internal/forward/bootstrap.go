package forward

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/stone-age-io/hwprobe/internal/config"
	"go.uber.org/zap"
)

const bootstrapHTTPTimeout = 15 * time.Second

// BootstrapCredentials checks whether the NATS creds file exists and, if
// not, fetches it from the provisioning endpoint and writes it to disk.
// Returns nil when the file already exists or was successfully created.
func BootstrapCredentials(cfg *config.AuthConfig, deviceID string, logger *zap.Logger) error {
	if !cfg.Bootstrap.Enabled {
		return nil
	}
	if cfg.Type != "creds" {
		return fmt.Errorf("bootstrap: auth type must be creds, got %q", cfg.Type)
	}

	if _, err := os.Stat(cfg.CredsFile); err == nil {
		logger.Info("Credentials file exists, skipping bootstrap", zap.String("path", cfg.CredsFile))
		return nil
	}

	logger.Info("Credentials file not found, bootstrapping from provisioning endpoint",
		zap.String("path", cfg.CredsFile),
		zap.String("url", cfg.Bootstrap.URL))

	token := os.Getenv(cfg.Bootstrap.TokenEnv)
	if token == "" {
		return fmt.Errorf("bootstrap: environment variable %s is not set or empty", cfg.Bootstrap.TokenEnv)
	}

	content, err := fetchCreds(cfg.Bootstrap.URL, token, deviceID)
	if err != nil {
		return fmt.Errorf("bootstrap: failed to fetch credentials: %w", err)
	}

	if err := writeCredsFile(cfg.CredsFile, content); err != nil {
		return fmt.Errorf("bootstrap: failed to write credentials file: %w", err)
	}
	logger.Info("Credentials file written", zap.String("path", cfg.CredsFile))

	return nil
}

// fetchCreds requests the device's creds file from the provisioning
// endpoint using bearer token authentication.
func fetchCreds(baseURL, token, deviceID string) ([]byte, error) {
	req, err := http.NewRequest("GET", baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if deviceID != "" {
		q := req.URL.Query()
		q.Set("device_id", deviceID)
		req.URL.RawQuery = q.Encode()
	}

	client := &http.Client{Timeout: bootstrapHTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("provisioning endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("provisioning endpoint returned empty credentials")
	}

	return content, nil
}

// writeCredsFile writes the credentials to disk with restrictive
// permissions, creating parent directories if needed.
func writeCredsFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
