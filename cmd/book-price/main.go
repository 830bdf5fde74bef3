package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/betbot/polyclob/clob/client"
	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/config"
	"github.com/betbot/polyclob/pkg/logger"
)

var (
	tokenID = flag.String("token", "", "token id (required)")
	side    = flag.String("side", "BUY", "BUY or SELL")
	amount  = flag.Float64("amount", 0, "order size in shares (required)")
	host    = flag.String("host", "", "CLOB host override")
	depth   = flag.Bool("depth", false, "print the full book")
	verbose = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()
	config.LoadDotenv()

	if *tokenID == "" || *amount <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	if err := logger.Init(logger.Config{Level: logLevel}); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	clobHost := *host
	if clobHost == "" {
		clobHost = config.DefaultClobHost
	}

	orderSide := types.Side(strings.ToUpper(*side))
	if orderSide != types.SideBuy && orderSide != types.SideSell {
		log.Fatalf("invalid side: %s", *side)
	}

	// read-only operations, no key needed
	clob := client.NewClient(clobHost, types.ChainPolygon, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	price, err := clob.CalculateMarketPrice(ctx, *tokenID, orderSide, *amount, types.OrderTypeFOK)
	if err != nil {
		log.Fatalf("calculate market price: %v", err)
	}
	fmt.Printf("%s %.2f shares of %s → marketable price %.4f\n", orderSide, *amount, *tokenID, price)

	if !*depth {
		return
	}
	book, err := clob.GetOrderBook(ctx, *tokenID)
	if err != nil {
		log.Fatalf("get order book: %v", err)
	}
	fmt.Printf("\nasks (%d):\n", len(book.Asks))
	for _, lvl := range book.Asks {
		fmt.Printf("  %8s x %s\n", lvl.Price, lvl.Size)
	}
	fmt.Printf("bids (%d):\n", len(book.Bids))
	for _, lvl := range book.Bids {
		fmt.Printf("  %8s x %s\n", lvl.Price, lvl.Size)
	}
}
