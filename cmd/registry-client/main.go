package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/cmd/flags"
	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/registry"
)

var (
	certHashFlag = &cli.StringFlag{
		Name:  "cert-hash",
		Usage: "certificate hash as a 64-char hex string",
	}
	eventFlag = &cli.StringFlag{
		Name:  "event",
		Usage: "event name, used with the other certificate fields instead of cert-hash",
	}
	organizerFlag = &cli.StringFlag{
		Name:  "organizer",
		Usage: "event organizer",
	}
	dateFlag = &cli.StringFlag{
		Name:  "date",
		Usage: "event date",
	}
	recipientNameFlag = &cli.StringFlag{
		Name:  "recipient-name",
		Usage: "recipient display name",
	}
	recipientAddrFlag = &cli.StringFlag{
		Name:  "recipient-address",
		Usage: "recipient account address",
	}
	newOwnerFlag = &cli.StringFlag{
		Name:  "new-owner",
		Usage: "hex-encoded identity of the new owner",
	}
)

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Interact with the on-chain certificate registry",
		Flags: append(append([]cli.Flag{
			flags.AppIDFlag,
			flags.MnemonicFlag,
			flags.WaitRoundsFlag,
			certHashFlag,
			eventFlag,
			organizerFlag,
			dateFlag,
			recipientNameFlag,
			recipientAddrFlag,
		}, flags.LedgerFlags...), flags.CommonFlags...),
		Commands: []*cli.Command{
			{
				Name:   "register",
				Usage:  "Register a certificate hash to the signing account",
				Action: withClient(runRegister),
			},
			{
				Name:   "verify",
				Usage:  "Look up the registered owner of a certificate",
				Action: withClient(runOwner),
			},
			{
				Name:   "transfer",
				Usage:  "Transfer a certificate to a new owner",
				Flags:  []cli.Flag{newOwnerFlag},
				Action: withClient(runTransfer),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withClient(action func(*cli.Context, *registry.AppRegistryClient, interfaces.CertificateHash) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		logger := flags.SetupLogger(cCtx)

		appID := cCtx.Uint64(flags.AppIDFlag.Name)
		if appID == 0 {
			return errors.New("registry-app-id is required")
		}

		algod, err := algoclient.NewClient(cCtx.String(flags.AlgodAddrFlag.Name), cCtx.String(flags.AlgodTokenFlag.Name))
		if err != nil {
			return err
		}

		client := registry.NewAppRegistryClient(algod, appID, logger)
		client.SetWaitRounds(cCtx.Uint64(flags.WaitRoundsFlag.Name))

		if phrase := cCtx.String(flags.MnemonicFlag.Name); phrase != "" {
			signer, err := algoclient.NewAccountSigner(phrase)
			if err != nil {
				return err
			}
			client.SetSigner(signer)
		}

		hash, err := certificateHash(cCtx)
		if err != nil {
			return err
		}

		return action(cCtx, client, hash)
	}
}

// certificateHash resolves the target hash from either the cert-hash flag
// or the certificate field flags.
func certificateHash(cCtx *cli.Context) (interfaces.CertificateHash, error) {
	if hexHash := cCtx.String(certHashFlag.Name); hexHash != "" {
		return interfaces.NewCertificateHashFromHex(hexHash)
	}

	event := cCtx.String(eventFlag.Name)
	if event == "" {
		return interfaces.CertificateHash{}, errors.New("cert-hash or event is required")
	}

	cert := interfaces.Certificate{
		Event:            event,
		Organizer:        cCtx.String(organizerFlag.Name),
		Date:             cCtx.String(dateFlag.Name),
		RecipientName:    cCtx.String(recipientNameFlag.Name),
		RecipientAddress: cCtx.String(recipientAddrFlag.Name),
	}
	return cert.Hash(), nil
}

func runRegister(cCtx *cli.Context, client *registry.AppRegistryClient, hash interfaces.CertificateHash) error {
	if err := client.Register(context.Background(), hash); err != nil {
		return err
	}
	fmt.Printf("registered %s\n", hash)
	return nil
}

func runOwner(cCtx *cli.Context, client *registry.AppRegistryClient, hash interfaces.CertificateHash) error {
	owner, err := client.Verify(context.Background(), hash)
	if err != nil {
		return err
	}
	if owner.IsAbsent() {
		fmt.Printf("%s is not registered\n", hash)
		return nil
	}
	fmt.Printf("%s is owned by %s\n", hash, owner)
	return nil
}

func runTransfer(cCtx *cli.Context, client *registry.AppRegistryClient, hash interfaces.CertificateHash) error {
	newOwnerHex := cCtx.String(newOwnerFlag.Name)
	if newOwnerHex == "" {
		return errors.New("new-owner is required")
	}
	newOwner, err := hex.DecodeString(newOwnerHex)
	if err != nil {
		return fmt.Errorf("invalid new-owner: %w", err)
	}

	if err := client.Transfer(context.Background(), hash, newOwner); err != nil {
		return err
	}
	fmt.Printf("transferred %s to %s\n", hash, newOwnerHex)
	return nil
}
