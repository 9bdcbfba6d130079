// Command nft-cli validates NFT transfer requests and address conversions
// offline, and sends transfers through the wallet API.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	if err := newApp().Run(os.Args); err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Command failed")
	}
}
