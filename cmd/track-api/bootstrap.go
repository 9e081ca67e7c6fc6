package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Elanstech/scream-track/config"
	lookupapi "github.com/Elanstech/scream-track/internal/api/lookup_api"
	"github.com/Elanstech/scream-track/internal/broker/kafka"
	"github.com/Elanstech/scream-track/internal/cache/rediscache"
	"github.com/Elanstech/scream-track/internal/integrations/formapi"
	"github.com/Elanstech/scream-track/internal/integrations/formapi/fake"
	"github.com/Elanstech/scream-track/internal/normalize"
	"github.com/Elanstech/scream-track/internal/resolve"
	"github.com/Elanstech/scream-track/internal/services/lookup"
)

const defaultCarrierTrackURL = "https://tools.usps.com/go/TrackConfirmAction?tLabels=%s"

type trackAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     trackAPIOpts
	api      *lookupapi.LookupAPI
	producer *kafka.Producer
}

func mustBootstrapTrackAPI() *trackAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.Scream.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	lastTTL := time.Duration(cfg.Scream.LastOrderTTLSeconds) * time.Second
	if lastTTL <= 0 {
		lastTTL = 30 * 24 * time.Hour
	}
	trackURL := cfg.Scream.CarrierTrackURL
	if trackURL == "" {
		trackURL = defaultCarrierTrackURL
	}
	topic := cfg.Kafka.LookupResolvedTopicName
	if topic == "" {
		topic = "lookup.resolved"
	}

	var client resolve.SubmissionsClient
	if cfg.FormAPI.APIKey == "" {
		slog.Warn("form api key is empty, using fake submissions client")
		client = fake.New()
	} else {
		client = formapi.New(cfg.FormAPI.BaseURL, cfg.FormAPI.APIKey, cfg.FormAPI.FormID)
	}

	resolver := resolve.New(client, slog.Default())

	var store *rediscache.RedisCache
	var limiter *rediscache.RateLimiter
	if cfg.Redis.Host != "" {
		redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		store = rediscache.New(redisAddr)
		limiter = rediscache.NewRateLimiter(redisAddr)
	}

	opts := normalize.Options{StatusFromSubmission: cfg.Scream.StatusFromSubmission}

	var svc *lookup.Service
	if store != nil {
		svc = lookup.New(resolver, store, lastTTL, opts)
	} else {
		svc = lookup.New(resolver, nil, 0, opts)
	}

	var producer *kafka.Producer
	if cfg.Kafka.Host != "" {
		producer = kafka.NewProducer([]string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)})
		svc.UsePublisher(producer, topic)
	}

	var apiLimiter lookupapi.RateLimiter
	if limiter != nil {
		apiLimiter = limiter
	}
	api := lookupapi.New(svc, apiLimiter, cfg.Scream.LookupRateLimitPerMinute, trackURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &trackAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: trackAPIOpts{
			httpAddr: httpAddr,
		},
		api:      api,
		producer: producer,
	}
}

func (a *trackAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
}

func (a *trackAPIApp) Run() error {
	return runTrackAPI(a.ctx, a.opts, a.api)
}
