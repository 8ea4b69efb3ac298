package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/feed"
	"main/internal/hours"
	"main/internal/ingest"
	"main/internal/mdg"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/provider"
	"main/internal/subscription"
)

func main() {
	if err := run(); err != nil {
		log.Printf("feed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to yaml/json settings")
	symbolsFlag := flag.String("symbols", "AAPL,MSFT", "comma separated tickers to subscribe")
	resolutionFlag := flag.String("resolution", "minute", "tick|second|minute|hour|daily")
	wsURL := flag.String("ws-url", "", "websocket endpoint; empty runs the simulated handler")
	pyroscopeEnabled := flag.Bool("pyroscope", false, "enable pyroscope profiling")
	sliceInterval := flag.Duration("slice-interval", time.Second, "slice loop interval")
	flag.Parse()

	if *pyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "feed",
			ServerAddress:   "http://localhost:4040",
			Tags: map[string]string{
				"env": "local",
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	settings := ops.Default()
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}

	resolution, err := parseResolution(*resolutionFlag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := obs.NewMetrics()
	handler, closeHandler, err := buildHandler(ctx, *wsURL)
	if err != nil {
		return err
	}
	defer closeHandler()

	f := feed.New(feed.Dependencies{
		QueueHandler:    handler,
		ChannelProvider: streamEverything{},
		Metrics:         metrics,
	}, settings)
	if err := f.Initialize(&provider.JobPacket{Type: provider.JobTypeLive, DeploymentID: "local"}); err != nil {
		return err
	}
	defer f.Exit()

	exchangeHours := hours.ForMarket("usa")
	now := time.Now().UTC()
	for _, ticker := range strings.Split(*symbolsFlag, ",") {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		req := subscription.Request{
			Config: subscription.Config{
				Symbol:           model.NewSymbol(ticker, "usa", enum.SecurityTypeEquity),
				SecurityType:     enum.SecurityTypeEquity,
				DataKind:         enum.DataKindTradeBar,
				Resolution:       resolution,
				ExchangeTimeZone: "America/New_York",
				DataTimeZone:     "America/New_York",
				FillForward:      true,
				IsFiltered:       false,
			},
			Exchange: exchangeHours,
			StartUTC: now,
			EndUTC:   now.AddDate(1, 0, 0),
		}
		if _, err := f.CreateSubscription(req); err != nil {
			logs.Errorf("subscribe %s, err: %+v", ticker, err)
		}
	}

	runSliceLoop(ctx, f, metrics, *sliceInterval)

	snapshot := metrics.Snapshot()
	logs.Infof("points=%d fill_forward=%d drops=%d stops=%d",
		snapshot.PointsEmitted, snapshot.FillForwardEmitted, snapshot.QueueDrops, snapshot.QueueStops)
	return nil
}

func buildHandler(ctx context.Context, wsURL string) (provider.DataQueueHandler, func(), error) {
	if wsURL == "" {
		sim := mdg.NewHandler(0, nil)
		sim.Start()
		return sim, sim.Stop, nil
	}
	h := ingest.NewHandler(ctx, wsURL)
	if err := h.StartWebsocket(ctx); err != nil {
		return nil, nil, err
	}
	return h, h.Close, nil
}

// runSliceLoop drains every subscription on a fixed cadence until shutdown.
func runSliceLoop(ctx context.Context, f *feed.Feed, metrics *obs.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-sys.Shutdown():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sub := range f.Subscriptions() {
				start := time.Now()
				for sub.MoveNext() {
					point := sub.Current()
					if point == nil {
						break
					}
					metrics.ObservePoint(point.IsFillForward)
					logs.Infof("%s %s [%s, %s] ff=%t",
						point.Symbol, point.Kind(), point.StartTime.Format(time.RFC3339), point.EndTime.Format(time.RFC3339), point.IsFillForward)
				}
				metrics.ObservePull(time.Since(start))
			}
		}
	}
}

// streamEverything routes every configuration to the queue handler.
type streamEverything struct{}

func (streamEverything) ShouldStream(subscription.Config) bool { return true }

func parseResolution(name string) (enum.Resolution, error) {
	switch strings.ToLower(name) {
	case "tick":
		return enum.ResolutionTick, nil
	case "second":
		return enum.ResolutionSecond, nil
	case "minute":
		return enum.ResolutionMinute, nil
	case "hour":
		return enum.ResolutionHour, nil
	case "daily":
		return enum.ResolutionDaily, nil
	default:
		return 0, fmt.Errorf("unknown resolution %q", name)
	}
}
