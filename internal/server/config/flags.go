package config

import (
	"flag"
	"strings"
	"time"

	"github.com/dmitrijs2005/artvault/internal/flagx"
)

var knownFlags = []string{"-a", "-m", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-x", "-n", "-f", "-i", "-l", "-o", "-v", "-media"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u/-p/-b/-g/-e  S3 root user, password, bucket, region, base endpoint
//	-x int      maximum asset size, bytes
//	-n int      maximum chunk count
//	-f uint     fee amount, smallest ledger units
//	-i string   invoice derivation secret
//	-l string   ledger base URL
//	-o string   recognition service base URL
//	-v string   log level
//	-media      comma separated media type allowlist
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.Int64Var(&config.MaxAssetBytes, "x", config.MaxAssetBytes, "maximum asset size in bytes")
	fs.IntVar(&config.MaxChunks, "n", config.MaxChunks, "maximum chunk count")
	fs.Uint64Var(&config.FeeAmount, "f", config.FeeAmount, "submission fee")
	fs.StringVar(&config.InvoiceSecret, "i", config.InvoiceSecret, "invoice derivation secret")
	fs.StringVar(&config.LedgerURL, "l", config.LedgerURL, "ledger base URL")
	fs.StringVar(&config.OracleURL, "o", config.OracleURL, "recognition service base URL")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	media := fs.String("media", strings.Join(config.AllowedMediaTypes, ","), "allowed media types")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "media":
			config.AllowedMediaTypes = splitList(*media)
		}
	})
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
