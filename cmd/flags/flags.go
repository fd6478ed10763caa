// Package flags holds CLI flag definitions and setup helpers shared by the
// binaries in this repository.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/algopoap/poap-service/common"
	"github.com/algopoap/poap-service/httpserver"
)

// SetupLogger builds the process logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var AlgodAddrFlag = &cli.StringFlag{
	Name:    "algod-addr",
	Value:   "https://testnet-api.algonode.cloud",
	Usage:   "algod node address",
	EnvVars: []string{"POAP_ALGOD_ADDR"},
}
var AlgodTokenFlag = &cli.StringFlag{
	Name:    "algod-token",
	Usage:   "API key for the algod endpoint",
	EnvVars: []string{"POAP_ALGOD_TOKEN"},
}
var IndexerAddrFlag = &cli.StringFlag{
	Name:    "indexer-addr",
	Value:   "https://testnet-idx.algonode.cloud",
	Usage:   "indexer address, empty disables indexer lookups",
	EnvVars: []string{"POAP_INDEXER_ADDR"},
}
var IndexerTokenFlag = &cli.StringFlag{
	Name:    "indexer-token",
	Usage:   "API key for the indexer endpoint",
	EnvVars: []string{"POAP_INDEXER_TOKEN"},
}
var MnemonicFlag = &cli.StringFlag{
	Name:    "mnemonic",
	Usage:   "25-word mnemonic of the service account",
	EnvVars: []string{"POAP_MNEMONIC"},
}
var AppIDFlag = &cli.Uint64Flag{
	Name:    "registry-app-id",
	Usage:   "application ID of the deployed certificate registry, 0 disables registry calls",
	EnvVars: []string{"POAP_REGISTRY_APP_ID"},
}
var WaitRoundsFlag = &cli.Uint64Flag{
	Name:  "wait-rounds",
	Value: 4,
	Usage: "rounds to wait for transaction confirmation",
}
var IssuerFlag = &cli.StringFlag{
	Name:  "issuer",
	Usage: "expected token creator address, defaults to the service account",
}

var StorageFlag = &cli.StringSliceFlag{
	Name:    "storage-uri",
	Usage:   "metadata storage backend URI (mem://, file://, s3://, ipfs://), repeatable",
	EnvVars: []string{"POAP_STORAGE_URIS"},
}
var MetadataURLPrefixFlag = &cli.StringFlag{
	Name:  "metadata-url-prefix",
	Usage: "URL prefix recorded in minted assets, content ID is appended",
}

var SMTPHostFlag = &cli.StringFlag{
	Name:    "smtp-host",
	Usage:   "SMTP host for mint notifications, empty disables mail",
	EnvVars: []string{"POAP_SMTP_HOST"},
}
var SMTPPortFlag = &cli.IntFlag{
	Name:    "smtp-port",
	Value:   587,
	Usage:   "SMTP port",
	EnvVars: []string{"POAP_SMTP_PORT"},
}
var SMTPUserFlag = &cli.StringFlag{
	Name:    "smtp-user",
	Usage:   "SMTP username",
	EnvVars: []string{"POAP_SMTP_USER"},
}
var SMTPPasswordFlag = &cli.StringFlag{
	Name:    "smtp-password",
	Usage:   "SMTP password",
	EnvVars: []string{"POAP_SMTP_PASSWORD"},
}
var SMTPFromFlag = &cli.StringFlag{
	Name:    "smtp-from",
	Usage:   "sender address for notification mails",
	EnvVars: []string{"POAP_SMTP_FROM"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

// CommonFlags are shared by every binary.
var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

// LedgerFlags configure node and indexer access.
var LedgerFlags = []cli.Flag{
	AlgodAddrFlag,
	AlgodTokenFlag,
	IndexerAddrFlag,
	IndexerTokenFlag,
}

// ServerFlags configure the HTTP listeners.
var ServerFlags = []cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
