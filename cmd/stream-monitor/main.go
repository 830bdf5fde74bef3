package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/betbot/polyclob/clob/stream"
	"github.com/betbot/polyclob/pkg/config"
	"github.com/betbot/polyclob/pkg/logger"
	"github.com/betbot/polyclob/pkg/shutdown"
	"github.com/betbot/polyclob/pkg/syncgroup"
)

var (
	configPath = flag.String("config", "", "config file (yaml/json)")
	assets     = flag.String("assets", "", "comma-separated token ids for the market channel")
	markets    = flag.String("markets", "", "comma-separated condition ids for the user channel")
	topics     = flag.String("topics", "", "comma-separated live-data topics (e.g. crypto_prices,comments)")
	proxyURL   = flag.String("proxy", "", "HTTP proxy for the websocket dial")
	raw        = flag.Bool("raw", false, "print raw frames from the live-data feed")
	verbose    = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()
	config.LoadDotenv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := cfg.LogLevel
	if *verbose {
		logLevel = "debug"
	}
	if err := logger.Init(logger.Config{Level: logLevel, OutputFile: cfg.LogFile}); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streamCfg := stream.DefaultConfig()
	streamCfg.ProxyURL = *proxyURL

	shut := shutdown.NewManager()
	consumers := syncgroup.New()
	channels := 0

	if assetIDs := splitList(*assets); len(assetIDs) > 0 {
		mktCfg := *streamCfg
		mktCfg.URL = cfg.Hosts.MarketWS
		client := stream.NewMarketClient(&mktCfg)
		if err := client.Subscribe(assetIDs...); err != nil {
			log.Fatalf("subscribe market: %v", err)
		}
		if err := client.Start(ctx); err != nil {
			log.Fatalf("start market stream: %v", err)
		}
		shut.OnShutdown(func(context.Context) { client.Stop() })
		consumers.Add(func() { consumeMarket(ctx, client) })
		channels++
		logger.Infof("market channel: %d assets", len(assetIDs))
	}

	if conditionIDs := splitList(*markets); len(conditionIDs) > 0 {
		creds := cfg.APICreds()
		usrCfg := *streamCfg
		usrCfg.URL = cfg.Hosts.UserWS
		client, err := stream.NewUserClient(creds, conditionIDs, &usrCfg)
		if err != nil {
			log.Fatalf("user stream: %v", err)
		}
		if err := client.Start(ctx); err != nil {
			log.Fatalf("start user stream: %v", err)
		}
		shut.OnShutdown(func(context.Context) { client.Stop() })
		consumers.Add(func() { consumeUser(ctx, client) })
		channels++
		logger.Infof("user channel: %d markets", len(conditionIDs))
	}

	if topicList := splitList(*topics); len(topicList) > 0 {
		liveCfg := *streamCfg
		liveCfg.URL = cfg.Hosts.LiveDataWS
		client := stream.NewLiveDataClient(cfg.APICreds(), &liveCfg)
		registerLiveHandlers(client, topicList, *raw)

		subs := make([]stream.Subscription, 0, len(topicList))
		for _, topic := range topicList {
			subs = append(subs, stream.Subscription{Topic: topic, Type: "*"})
		}
		if err := client.Subscribe(subs...); err != nil {
			log.Fatalf("subscribe live-data: %v", err)
		}
		if err := client.Start(ctx); err != nil {
			log.Fatalf("start live-data stream: %v", err)
		}
		shut.OnShutdown(func(context.Context) { client.Stop() })
		channels++
		logger.Infof("live-data channel: topics=%s", *topics)
	}

	if channels == 0 {
		fmt.Fprintln(os.Stderr, "nothing to monitor: pass -assets, -markets or -topics")
		os.Exit(2)
	}
	consumers.Go()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	cancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	shut.Shutdown(shutCtx)
	consumers.Wait()
}

func consumeMarket(ctx context.Context, client *stream.MarketClient) {
	for {
		var ev stream.MarketEvent
		select {
		case <-ctx.Done():
			return
		case ev = <-client.Events():
		}
		switch ev.Type {
		case stream.EventBook:
			fmt.Printf("[%s] book %s: %d bids / %d asks\n",
				now(), ev.Book.AssetID, len(ev.Book.Bids), len(ev.Book.Asks))
		case stream.EventPriceChange:
			for _, ch := range ev.PriceChange.Changes {
				fmt.Printf("[%s] price %s %s @ %s x %s\n",
					now(), ch.Side, ch.AssetID, ch.Price, ch.Size)
			}
		case stream.EventTickSizeChange:
			fmt.Printf("[%s] tick size %s: %s → %s\n",
				now(), ev.TickSizeChange.AssetID, ev.TickSizeChange.OldTickSize, ev.TickSizeChange.NewTickSize)
		case stream.EventLastTradePrice:
			fmt.Printf("[%s] last trade %s @ %s\n",
				now(), ev.LastTradePrice.AssetID, ev.LastTradePrice.Price)
		case stream.EventRaw:
			logger.Debugf("unhandled market frame: %s", string(ev.Raw))
		}
	}
}

func consumeUser(ctx context.Context, client *stream.UserClient) {
	tracker := stream.NewOrderTracker()
	tracker.OnFilled(func(o *stream.TrackedOrder) {
		fmt.Printf("[%s] filled %s: %s %.2f @ %s\n", now(), o.ID, o.Side, o.OriginalSize, o.Price)
	})

	for {
		var ev stream.UserEvent
		select {
		case <-ctx.Done():
			return
		case ev = <-client.Events():
		}
		switch ev.Type {
		case stream.EventOrder:
			tracker.Apply(ev.Order)
			fmt.Printf("[%s] order %s %s: %s %s @ %s (matched %s, %d open)\n",
				now(), ev.Order.Type, ev.Order.ID, ev.Order.Side, ev.Order.OriginalSize,
				ev.Order.Price, ev.Order.SizeMatched, tracker.Len())
		case stream.EventTrade:
			fmt.Printf("[%s] trade %s: %s %s @ %s [%s]\n",
				now(), ev.Trade.ID, ev.Trade.Side, ev.Trade.Size, ev.Trade.Price, ev.Trade.Status)
		case stream.EventRaw:
			logger.Debugf("unhandled user frame: %s", string(ev.Raw))
		}
	}
}

func registerLiveHandlers(client *stream.LiveDataClient, topicList []string, rawMode bool) {
	if rawMode {
		client.RegisterHandler("*", func(msg *stream.LiveMessage) error {
			pretty, _ := json.MarshalIndent(msg, "", "  ")
			fmt.Printf("[%s] %s\n", now(), string(pretty))
			return nil
		})
		return
	}
	for _, topic := range topicList {
		switch topic {
		case stream.TopicCryptoPrices, stream.TopicCryptoPricesChainlink:
			client.RegisterHandler(topic, stream.CryptoPriceHandler(func(price *stream.CryptoPrice) error {
				fmt.Printf("[%s] %s = $%.2f\n", now(), price.Symbol, price.Value.Float64())
				return nil
			}))
		case stream.TopicComments:
			client.RegisterHandler(topic, stream.CommentHandler(func(comment *stream.Comment) error {
				fmt.Printf("[%s] comment by %s: %s\n", now(), comment.Profile.Name, comment.Body)
				return nil
			}))
		case stream.TopicActivity:
			client.RegisterHandler(topic, stream.LiveTradeHandler(func(trade *stream.LiveTrade) error {
				fmt.Printf("[%s] activity: %s %s %s @ %s\n",
					now(), trade.Side, trade.Size.String(), trade.Outcome, trade.Price.String())
				return nil
			}))
		case stream.TopicClobUser:
			client.RegisterHandler(topic, func(msg *stream.LiveMessage) error {
				fmt.Printf("[%s] clob_user %s: %s\n", now(), msg.Type, string(msg.Payload))
				return nil
			})
		default:
			client.RegisterHandler(topic, func(msg *stream.LiveMessage) error {
				fmt.Printf("[%s] %s/%s: %s\n", now(), msg.Topic, msg.Type, string(msg.Payload))
				return nil
			})
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func now() string {
	return time.Now().Format("15:04:05")
}
