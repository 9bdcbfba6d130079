package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flow-hydraulics/nft-wallet-api/nft"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	APIFlag            = "api"
	NetworkFlag        = "network"
	SyncFlag           = "sync"
	IdempotencyKeyFlag = "idempotency-key"
	TimeoutFlag        = "timeout"
)

func networkFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    NetworkFlag,
		Aliases: []string{"n"},
		Usage:   "Bech32 human-readable part of the network",
		Value:   "smr",
		EnvVars: []string{"NFT_WALLET_BECH32_HRP"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "nft-cli",
		Usage: "Send NFTs and work with bech32 addresses",
		Commands: []*cli.Command{
			{
				Name:      "send-nft",
				Usage:     "Send an NFT to an address",
				ArgsUsage: "<address> <nftId>",
				Flags: []cli.Flag{
					networkFlag(),
					&cli.StringFlag{
						Name:    APIFlag,
						Usage:   "Base URL of the wallet API, including the version",
						Value:   "http://localhost:3000/v1",
						EnvVars: []string{"NFT_WALLET_API_URL"},
					},
					&cli.BoolFlag{
						Name:  SyncFlag,
						Usage: "Wait for the transfer to be submitted instead of returning a job",
					},
					&cli.StringFlag{
						Name:  IdempotencyKeyFlag,
						Usage: "Idempotency key of the request, random by default",
					},
					&cli.DurationFlag{
						Name:  TimeoutFlag,
						Usage: "Request timeout",
						Value: time.Minute,
					},
				},
				Action: sendNft,
			},
			{
				Name:      "parse-address",
				Usage:     "Validate a bech32 address and show its parts",
				ArgsUsage: "<address>",
				Action:    parseAddress,
			},
			{
				Name:      "bech32-to-hex",
				Usage:     "Convert a bech32 address to the hex of its payload",
				ArgsUsage: "<address>",
				Action: func(cCtx *cli.Context) error {
					return convert(cCtx, 1, func(args []string) (string, error) {
						return nft.Bech32ToHex(args[0])
					})
				},
			},
			{
				Name:      "hex-to-bech32",
				Usage:     "Convert a hex public key hash to an Ed25519 address",
				ArgsUsage: "<hex>",
				Flags:     []cli.Flag{networkFlag()},
				Action: func(cCtx *cli.Context) error {
					return convert(cCtx, 1, func(args []string) (string, error) {
						return nft.HexToBech32(args[0], cCtx.String(NetworkFlag))
					})
				},
			},
			{
				Name:      "nft-id-to-bech32",
				Usage:     "Convert an NFT id to the address owned by the NFT",
				ArgsUsage: "<nftId>",
				Flags:     []cli.Flag{networkFlag()},
				Action: func(cCtx *cli.Context) error {
					return convert(cCtx, 1, func(args []string) (string, error) {
						return nft.NftIdToBech32(args[0], cCtx.String(NetworkFlag))
					})
				},
			},
			{
				Name:      "public-key-to-bech32",
				Usage:     "Derive the Ed25519 address of a hex public key",
				ArgsUsage: "<publicKey>",
				Flags:     []cli.Flag{networkFlag()},
				Action: func(cCtx *cli.Context) error {
					return convert(cCtx, 1, func(args []string) (string, error) {
						return nft.PublicKeyToBech32(args[0], cCtx.String(NetworkFlag))
					})
				},
			},
		},
	}
}

func checkArgs(cCtx *cli.Context, n int) error {
	if cCtx.NArg() != n {
		return fmt.Errorf("expected %d argument(s), got %d: %s", n, cCtx.NArg(), cCtx.Command.ArgsUsage)
	}
	return nil
}

func convert(cCtx *cli.Context, n int, f func(args []string) (string, error)) error {
	if err := checkArgs(cCtx, n); err != nil {
		return err
	}

	res, err := f(cCtx.Args().Slice())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cCtx.App.Writer, res)
	return err
}

func parseAddress(cCtx *cli.Context) error {
	if err := checkArgs(cCtx, 1); err != nil {
		return err
	}

	a, err := nft.ParseAddress(cCtx.Args().First())
	if err != nil {
		return err
	}

	return printJSON(cCtx.App.Writer, map[string]string{
		"address":   a.Bech32(),
		"bech32Hrp": a.Hrp(),
		"kind":      a.Kind().String(),
		"hex":       a.Hex(),
	})
}

func sendNft(cCtx *cli.Context) error {
	if err := checkArgs(cCtx, 2); err != nil {
		return err
	}

	req, err := nft.NewNftTransferRequest(
		cCtx.Args().Get(0),
		cCtx.Args().Get(1),
		nft.WithNetwork(cCtx.String(NetworkFlag)),
	)
	if err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(cCtx.String(APIFlag), "/") + "/nft-transfers"
	if cCtx.Bool(SyncFlag) {
		url += "?sync=1"
	}

	key := cCtx.String(IdempotencyKeyFlag)
	if key == "" {
		key = uuid.New().String()
	}

	httpReq, err := http.NewRequestWithContext(cCtx.Context, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", key)

	log.
		WithFields(log.Fields{"url": url, "idempotencyKey": key, "request": req.String()}).
		Debug("Sending NFT transfer")

	client := &http.Client{Timeout: cCtx.Duration(TimeoutFlag)}
	res, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusCreated {
		return fmt.Errorf("wallet API responded with %s: %s", res.Status, strings.TrimSpace(string(resBody)))
	}

	_, err = cCtx.App.Writer.Write(resBody)
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
