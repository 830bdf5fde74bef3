package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"

	"github.com/betbot/polyclob/clob/client"
	"github.com/betbot/polyclob/clob/signing"
	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/config"
	"github.com/betbot/polyclob/pkg/secretstore"
)

var (
	storePath   = flag.String("store", getenv("SECRET_STORE_PATH", "data/secrets"), "secret store directory")
	derivePath  = flag.String("path", "m/44'/60'/0'/0/0", "HD derivation path")
	deriveCreds = flag.Bool("creds", false, "also acquire API credentials and store them")
	clobHost    = flag.String("host", config.DefaultClobHost, "CLOB host for credential acquisition")
	chainID     = flag.Int64("chain-id", int64(types.ChainPolygon), "chain id (137 or 80002)")
)

func main() {
	flag.Parse()
	config.LoadDotenv()

	encKey, err := secretstore.ParseKey(os.Getenv("SECRET_STORE_KEY"))
	if err != nil {
		fatal(fmt.Errorf("SECRET_STORE_KEY: %w", err))
	}

	fmt.Fprintln(os.Stderr, "enter mnemonic (12/15/18/21/24 words), then press enter:")
	mnemonic := strings.TrimSpace(readLine())
	if mnemonic == "" {
		fatal(fmt.Errorf("mnemonic is empty"))
	}

	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		fatal(fmt.Errorf("invalid mnemonic: %w", err))
	}
	path, err := hdwallet.ParseDerivationPath(*derivePath)
	if err != nil {
		fatal(fmt.Errorf("invalid derivation path: %w", err))
	}
	account, err := wallet.Derive(path, false)
	if err != nil {
		fatal(fmt.Errorf("derive: %w", err))
	}
	privateKeyHex, err := wallet.PrivateKeyHex(account)
	if err != nil {
		fatal(fmt.Errorf("private key: %w", err))
	}
	address := account.Address.Hex()

	store, err := secretstore.Open(secretstore.OpenOptions{Path: *storePath, EncryptionKey: encKey})
	if err != nil {
		fatal(fmt.Errorf("open store: %w", err))
	}
	defer store.Close()

	if err := store.SaveWalletKey(address, privateKeyHex); err != nil {
		fatal(fmt.Errorf("save wallet key: %w", err))
	}
	fmt.Fprintf(os.Stderr, "wallet saved: %s\n", address)

	if !*deriveCreds {
		return
	}

	privateKey, err := signing.PrivateKeyFromHex(privateKeyHex)
	if err != nil {
		fatal(err)
	}
	clob := client.NewClient(*clobHost, types.Chain(*chainID), privateKey, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	creds, err := clob.CreateOrDeriveAPIKey(ctx, nil)
	if err != nil {
		fatal(fmt.Errorf("acquire credentials: %w", err))
	}
	if err := store.SaveCreds(address, creds); err != nil {
		fatal(fmt.Errorf("save creds: %w", err))
	}
	fmt.Fprintf(os.Stderr, "api credentials saved (key %s)\n", creds.Key)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readLine() string {
	br := bufio.NewReader(os.Stdin)
	s, _ := br.ReadString('\n')
	return strings.TrimSpace(s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
