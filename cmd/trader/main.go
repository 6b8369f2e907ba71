package main

import (
	"context"
	"flag"
	"log"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/broker/openapi"
	"main/internal/condition"
	"main/internal/engine"
	"main/internal/journal"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/risk"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	brokerURL := flag.String("broker-url", "", "Brokerage websocket URL (overrides config)")
	profile := flag.Bool("profile", false, "Enable pyroscope profiling")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *brokerURL != "" {
		loaded.Broker.URL = *brokerURL
	}
	if loaded.Broker.URL == "" {
		log.Fatal("broker url is empty")
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   "http://localhost:4040",
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var journalStore *journal.Journal
	if loaded.Journal.Enabled {
		client, err := conn.New(conn.Option{
			Host:     loaded.Journal.Host,
			Port:     loaded.Journal.Port,
			User:     loaded.Journal.User,
			Password: loaded.Journal.Password,
			Database: loaded.Journal.Database,
			SSLMode:  loaded.Journal.SSLMode,
		})
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		defer func() {
			_ = client.Close()
		}()

		journalStore, err = journal.New(client)
		if err != nil {
			log.Fatalf("journal migrate failed: %v", err)
		}
	}

	metrics := obs.NewMetrics()
	session := openapi.New(ctx, loaded.Broker.URL, loaded.Broker.AppKey)
	defer session.Close()

	eng := engine.New(engine.Config{
		Account:       loaded.Account,
		OrderSpacing:  loaded.Engine.OrderSpacing,
		SettleDelay:   loaded.Engine.SettleDelay,
		QueueCapacity: loaded.Engine.QueueCapacity,
	}, session, engine.Components{
		Classifier: condition.NewClassifier(loaded.Engine.BuyConditions, loaded.Engine.SellConditions),
		Ledger:     ledger.New(loaded.Engine.SnapshotCooldown),
		Admission:  risk.NewEngine(loaded.Risk),
		Journal:    journalStore,
		Metrics:    metrics,
	})

	if err := session.Start(ctx, eng.Publish); err != nil {
		log.Fatalf("session start failed: %v", err)
	}

	go func() {
		<-sys.Shutdown()
		logs.Info("shutdown signal received")
		eng.Close()
		cancel()
	}()

	logs.Infof("trader started, account: %s", loaded.Account)
	if err := eng.Run(ctx); err != nil {
		log.Fatalf("engine run failed: %v", err)
	}

	reportExit(eng, metrics)
}

func reportExit(eng *engine.Engine, metrics *obs.Metrics) {
	snapshot := metrics.Snapshot()
	logs.Infof("orders sent: %d, failed: %d, sells: %d, queue drops: %d, tr busy: %d",
		snapshot.OrdersSent, snapshot.OrdersFailed, snapshot.SellsSent, snapshot.QueueDrops, snapshot.TRBusy)
	if snapshot.BuyPipeline.Count > 0 {
		logs.Infof("buy pipeline latency, count: %d, min: %s, avg: %s, max: %s",
			snapshot.BuyPipeline.Count, snapshot.BuyPipeline.Min, snapshot.BuyPipeline.Avg, snapshot.BuyPipeline.Max)
	}
	for code, quantity := range eng.Ledger().Holdings() {
		logs.Infof("holding %s: %d", code, quantity)
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
