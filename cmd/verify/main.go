package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/cmd/flags"
	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/verifier"
)

var (
	issuerFlag = &cli.StringFlag{
		Name:     "issuer",
		Required: true,
		Usage:    "expected token creator address",
	}
	holderFlag = &cli.StringFlag{
		Name:  "holder",
		Usage: "also check that this account holds the token",
	}
)

func main() {
	app := &cli.App{
		Name:      "verify",
		Usage:     "Verify that assets are genuine attendance tokens",
		ArgsUsage: "asset-id [asset-id...]",
		Flags: append(append([]cli.Flag{
			issuerFlag,
			holderFlag,
		}, flags.LedgerFlags...), flags.CommonFlags...),
		Action: runVerify,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runVerify(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	if cCtx.NArg() == 0 {
		return errors.New("at least one asset ID is required")
	}
	assetIDs := make([]uint64, 0, cCtx.NArg())
	for _, arg := range cCtx.Args().Slice() {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid asset ID %q: %w", arg, err)
		}
		assetIDs = append(assetIDs, id)
	}

	algod, err := algoclient.NewClient(cCtx.String(flags.AlgodAddrFlag.Name), cCtx.String(flags.AlgodTokenFlag.Name))
	if err != nil {
		return err
	}

	var indexer interfaces.IndexerAPI
	if addr := cCtx.String(flags.IndexerAddrFlag.Name); addr != "" {
		idx, err := algoclient.NewIndexer(addr, cCtx.String(flags.IndexerTokenFlag.Name))
		if err != nil {
			return err
		}
		indexer = idx
	}

	v := verifier.New(algod, indexer, cCtx.String(issuerFlag.Name), logger)
	ctx := context.Background()

	var reports []verifier.Report
	if holder := cCtx.String(holderFlag.Name); holder != "" || len(assetIDs) == 1 {
		for _, id := range assetIDs {
			report, err := v.Verify(ctx, verifier.Request{AssetID: id, ExpectedHolder: holder})
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
	} else {
		reports, err = v.VerifyMultiple(ctx, assetIDs)
		if err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	for _, report := range reports {
		if !report.OverallValid {
			os.Exit(1)
		}
	}
	return nil
}
