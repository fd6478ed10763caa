package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/cmd/flags"
	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/poap"
	"github.com/algopoap/poap-service/storage"
)

var (
	eventFlag = &cli.StringFlag{
		Name:     "event",
		Required: true,
		Usage:    "event name",
	}
	organizerFlag = &cli.StringFlag{
		Name:  "organizer",
		Usage: "event organizer",
	}
	dateFlag = &cli.StringFlag{
		Name:  "date",
		Usage: "event date, e.g. 2025-08-26",
	}
	recipientNameFlag = &cli.StringFlag{
		Name:  "recipient-name",
		Usage: "recipient display name",
	}
	recipientAddrFlag = &cli.StringFlag{
		Name:  "recipient-address",
		Usage: "recipient account address",
	}
	recipientsFileFlag = &cli.StringFlag{
		Name:  "recipients-file",
		Usage: "CSV file with name,address rows for batch distribution",
	}
	mintOnlyFlag = &cli.BoolFlag{
		Name:  "mint-only",
		Usage: "mint without transferring to the recipient",
	}
)

func main() {
	app := &cli.App{
		Name:  "mint",
		Usage: "Mint attendance tokens for one recipient or a whole event",
		Flags: append(append([]cli.Flag{
			eventFlag,
			organizerFlag,
			dateFlag,
			recipientNameFlag,
			recipientAddrFlag,
			recipientsFileFlag,
			mintOnlyFlag,
			flags.MnemonicFlag,
			flags.WaitRoundsFlag,
			flags.StorageFlag,
			flags.MetadataURLPrefixFlag,
		}, flags.LedgerFlags...), flags.CommonFlags...),
		Action: runMint,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMint(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	mnemonicPhrase := cCtx.String(flags.MnemonicFlag.Name)
	if mnemonicPhrase == "" {
		return errors.New("mnemonic is required")
	}
	signer, err := algoclient.NewAccountSigner(mnemonicPhrase)
	if err != nil {
		return err
	}

	algod, err := algoclient.NewClient(cCtx.String(flags.AlgodAddrFlag.Name), cCtx.String(flags.AlgodTokenFlag.Name))
	if err != nil {
		return err
	}

	minter := poap.NewMinter(algod, signer, logger)
	minter.SetWaitRounds(cCtx.Uint64(flags.WaitRoundsFlag.Name))

	if uris := cCtx.StringSlice(flags.StorageFlag.Name); len(uris) > 0 {
		factory := storage.NewFactory(logger)
		backend, err := factory.CreateMultiBackend(uris)
		if err != nil {
			return err
		}
		minter.SetMetadataStore(backend, cCtx.String(flags.MetadataURLPrefixFlag.Name))
	}

	ctx := context.Background()
	event := poap.EventInfo{
		Event:     cCtx.String(eventFlag.Name),
		Organizer: cCtx.String(organizerFlag.Name),
		Date:      cCtx.String(dateFlag.Name),
	}

	if file := cCtx.String(recipientsFileFlag.Name); file != "" {
		recipients, err := readRecipients(file)
		if err != nil {
			return err
		}
		result, err := minter.Distribute(ctx, event, recipients)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	address := cCtx.String(recipientAddrFlag.Name)
	if address == "" {
		return errors.New("recipient-address or recipients-file is required")
	}

	cert := interfaces.Certificate{
		Event:            event.Event,
		Organizer:        event.Organizer,
		Date:             event.Date,
		RecipientName:    cCtx.String(recipientNameFlag.Name),
		RecipientAddress: address,
	}

	if cCtx.Bool(mintOnlyFlag.Name) {
		result, err := minter.Mint(ctx, cert)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	result, err := minter.MintAndDeliver(ctx, cert)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// readRecipients parses a CSV of name,address rows. A header row with
// "name" in the first column is skipped.
func readRecipients(path string) ([]poap.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open recipients file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	var recipients []poap.Recipient
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not parse recipients file: %w", err)
		}
		if len(recipients) == 0 && row[0] == "name" {
			continue
		}
		recipients = append(recipients, poap.Recipient{Name: row[0], Address: row[1]})
	}

	if len(recipients) == 0 {
		return nil, errors.New("recipients file is empty")
	}
	return recipients, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
