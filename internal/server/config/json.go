package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/artvault/internal/flagx"
	"github.com/dmitrijs2005/artvault/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// strings such as "15m" and integer nanoseconds. Absent keys leave the
// corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc"`
	MetricsAddr                 string          `json:"metrics_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	LogLevel                    string          `json:"log_level"`
	OTLPEndpoint                string          `json:"otlp_endpoint"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	PresignTTL                  *timex.Duration `json:"presign_ttl"`
	MaxAssetBytes               *int64          `json:"max_asset_bytes"`
	MaxChunks                   *int            `json:"max_chunks"`
	AllowedMediaTypes           []string        `json:"allowed_media_types"`
	FeeAmount                   *uint64         `json:"fee_amount"`
	InvoiceSecret               string          `json:"invoice_secret"`
	LedgerURL                   string          `json:"ledger_url"`
	OracleURL                   string          `json:"oracle_url"`
	MinOriginality              *uint16         `json:"min_originality"`
	MinVisibility               *uint16         `json:"min_visibility"`
}

// parseJson loads the file named by -c / -config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.InvoiceSecret, c.InvoiceSecret)
	setString(&config.LedgerURL, c.LedgerURL)
	setString(&config.OracleURL, c.OracleURL)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PresignTTL != nil {
		config.PresignTTL = c.PresignTTL.Duration
	}
	setValue(&config.MaxAssetBytes, c.MaxAssetBytes)
	setValue(&config.MaxChunks, c.MaxChunks)
	setValue(&config.FeeAmount, c.FeeAmount)
	setValue(&config.MinOriginality, c.MinOriginality)
	setValue(&config.MinVisibility, c.MinVisibility)
	if len(c.AllowedMediaTypes) > 0 {
		config.AllowedMediaTypes = c.AllowedMediaTypes
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
