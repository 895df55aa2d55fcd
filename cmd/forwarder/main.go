// The forwarder tails Tetragon's event export for honeytoken trap hits,
// normalizes them into deception alerts, and relays them to the alert sinks
// configured in the cluster. Runs are debounced behind a webhook trigger so
// bursts of kernel events collapse into a single pass over the logs.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/patrickpichler/koney/internal/alert"
	"github.com/patrickpichler/koney/internal/config"
	"github.com/patrickpichler/koney/internal/dedup"
	"github.com/patrickpichler/koney/internal/pipeline"
	"github.com/patrickpichler/koney/internal/sink"
	"github.com/patrickpichler/koney/internal/tetragon"
)

func main() {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("Forwarder error", zap.Error(err))
	}
}

// run contains the main application logic, separated from main() for
// testability.
func run(logger *zap.Logger) error {
	ctx := ctrl.SetupSignalHandler()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("Starting Koney alert forwarder",
		zap.String("addr", cfg.ListenAddr),
		zap.String("agent_namespace", cfg.AgentNamespace),
		zap.String("sink_namespace", cfg.SinkNamespace),
		zap.Duration("debounce_interval", cfg.DebounceInterval),
	)

	restConfig := ctrl.GetConfigOrDie()
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create dynamic client: %w", err)
	}

	reader := tetragon.NewReader(client, dedup.NewCache(cfg.DedupCacheSize), logger, tetragon.ReaderOptions{
		Namespace:       cfg.AgentNamespace,
		PodSelector:     cfg.AgentPodSelector,
		Container:       cfg.AgentExportContainer,
		LookbackSeconds: int64(cfg.LookbackSeconds),
	})

	mapper := alert.NewMapper(alert.NewClusterPolicyResolver(dynamicClient), logger)

	registry := sink.NewRegistry(dynamicClient, client, cfg.SinkNamespace, logger)
	sender := sink.NewDynatraceSender(sink.NewClusterInfo(client, logger), cfg.SinkTimeout, logger)
	dispatcher := sink.NewDispatcher(registry, sender, logger)

	p := pipeline.New(reader, mapper, dispatcher, logger)
	debouncer := pipeline.NewDebouncer(logger, cfg.DebounceInterval, cfg.MaxDeferral, p.Run)

	errCh := make(chan error, 1)
	go func() {
		errCh <- debouncer.Start(ctx)
	}()

	server := NewServer(ServerConfig{
		Addr:         cfg.ListenAddr,
		TriggerRate:  cfg.TriggerRateLimit,
		TriggerBurst: cfg.TriggerRateBurst,
	}, debouncer, client, logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return <-errCh
}
