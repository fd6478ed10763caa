package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/cmd/flags"
	"github.com/algopoap/poap-service/common"
	"github.com/algopoap/poap-service/httpserver"
	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/metrics"
	"github.com/algopoap/poap-service/notify"
	"github.com/algopoap/poap-service/poap"
	"github.com/algopoap/poap-service/registry"
	"github.com/algopoap/poap-service/storage"
	"github.com/algopoap/poap-service/verifier"
)

var listenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

func main() {
	app := &cli.App{
		Name:  "poap-server",
		Usage: "Serve the attendance token mint, verify and registry API",
		Flags: joinFlags(
			[]cli.Flag{
				listenAddrFlag,
				flags.MnemonicFlag,
				flags.AppIDFlag,
				flags.WaitRoundsFlag,
				flags.IssuerFlag,
				flags.StorageFlag,
				flags.MetadataURLPrefixFlag,
				flags.SMTPHostFlag,
				flags.SMTPPortFlag,
				flags.SMTPUserFlag,
				flags.SMTPPasswordFlag,
				flags.SMTPFromFlag,
			},
			flags.LedgerFlags,
			flags.ServerFlags,
			flags.CommonFlags,
		),
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, group := range groups {
		all = append(all, group...)
	}
	return all
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	mnemonicPhrase := cCtx.String(flags.MnemonicFlag.Name)
	if mnemonicPhrase == "" {
		return errors.New("mnemonic is required to run the server")
	}
	signer, err := algoclient.NewAccountSigner(mnemonicPhrase)
	if err != nil {
		logger.Error("Failed to derive service account", "err", err)
		return err
	}

	algod, err := algoclient.NewClient(cCtx.String(flags.AlgodAddrFlag.Name), cCtx.String(flags.AlgodTokenFlag.Name))
	if err != nil {
		logger.Error("Failed to connect to algod", "err", err)
		return err
	}

	var indexer interfaces.IndexerAPI
	if addr := cCtx.String(flags.IndexerAddrFlag.Name); addr != "" {
		idx, err := algoclient.NewIndexer(addr, cCtx.String(flags.IndexerTokenFlag.Name))
		if err != nil {
			logger.Error("Failed to connect to indexer", "err", err)
			return err
		}
		indexer = idx
	}

	waitRounds := cCtx.Uint64(flags.WaitRoundsFlag.Name)

	minter := poap.NewMinter(algod, signer, logger)
	minter.SetWaitRounds(waitRounds)

	if uris := cCtx.StringSlice(flags.StorageFlag.Name); len(uris) > 0 {
		factory := storage.NewFactory(logger)
		backend, err := factory.CreateMultiBackend(uris)
		if err != nil {
			logger.Error("Failed to create metadata storage", "err", err)
			return err
		}
		minter.SetMetadataStore(backend, cCtx.String(flags.MetadataURLPrefixFlag.Name))
	}

	issuer := cCtx.String(flags.IssuerFlag.Name)
	if issuer == "" {
		issuer = signer.Address().String()
	}
	v := verifier.New(algod, indexer, issuer, logger)
	extractor := poap.NewExtractor(algod, indexer, logger)

	var certRegistry interfaces.CertificateRegistry
	if appID := cCtx.Uint64(flags.AppIDFlag.Name); appID != 0 {
		client := registry.NewAppRegistryClient(algod, appID, logger)
		client.SetSigner(signer)
		client.SetWaitRounds(waitRounds)
		certRegistry = client
		logger.Info("Certificate registry enabled", "appID", appID)
	}

	mailer, err := notify.New(notify.Config{
		Host:     cCtx.String(flags.SMTPHostFlag.Name),
		Port:     cCtx.Int(flags.SMTPPortFlag.Name),
		Username: cCtx.String(flags.SMTPUserFlag.Name),
		Password: cCtx.String(flags.SMTPPasswordFlag.Name),
		From:     cCtx.String(flags.SMTPFromFlag.Name),
	}, logger)
	if err != nil {
		logger.Error("Failed to configure mailer", "err", err)
		return err
	}

	m := metrics.New(common.MetricsNamespace)
	handler := httpserver.NewHandler(minter, v, extractor, certRegistry, mailer, m, logger)

	cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(listenAddrFlag.Name))
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server", "issuer", issuer)
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	logger.Info("Shutting down")
	server.Shutdown()
	return nil
}
