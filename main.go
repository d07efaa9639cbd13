package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcart "github.com/Zhima-Mochi/gamestore/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/gamestore/internal/application/catalog"
	appcheckout "github.com/Zhima-Mochi/gamestore/internal/application/checkout"
	appnotification "github.com/Zhima-Mochi/gamestore/internal/application/notification"
	apporder "github.com/Zhima-Mochi/gamestore/internal/application/order"
	apppayment "github.com/Zhima-Mochi/gamestore/internal/application/payment"
	"github.com/Zhima-Mochi/gamestore/internal/clock"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/config"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/gamestore/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/outbox"
	infrapay "github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/Zhima-Mochi/gamestore/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/gamestore/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/gamestore/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	settings := cfg.Settings()

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: settings.ServiceName,
		Env:     settings.Env,
		LogFile: settings.LogFile,
		Debug:   settings.Debug,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	shutdownTracing, err := oteltrace.Setup(context.Background(), settings.ServiceName, settings.Env, settings.OTLPEndpoint)
	if err != nil {
		systemLogger.Fatal("tracing_setup_failed", zap.Error(err))
	}

	counters, histograms := prometrics.Instruments(prometrics.New(prometheus.DefaultRegisterer, "", ""))
	tel := infraobs.New(
		oteltrace.New(settings.ServiceName),
		zaplogger.New(baseLogger),
		counters,
		histograms,
	)

	catalog, err := memory.LoadCatalog(settings.CatalogFile)
	if err != nil {
		systemLogger.Fatal("catalog_load_failed", zap.String("file", settings.CatalogFile), zap.Error(err))
	}
	history := memory.NewOrderHistory()
	inbox := memory.NewNotificationInbox(0)
	registry := infrapay.NewRegistry(
		infrapay.SandboxClients(settings.ApprovalRate),
		provider.Settings{Timeout: settings.BreakerTimeout, MaxFailures: settings.BreakerFailures},
		tel,
	)
	clk := clock.NewSystem()

	// In-memory event bus: checkout publishes, the notification worker consumes.
	bus := outbox.NewBus(tel)
	appnotification.New(bus, inbox, clk,
		workerpresentation.ObserveHandler(tel, "notification_worker"), tel,
	).Start()
	bus.Start(context.Background())

	handler := httppresentation.NewHandler(httppresentation.UseCases{
		ListCatalog:   appcatalog.NewListCatalogUseCase(catalog, cfg, tel),
		GetProduct:    appcatalog.NewGetProductUseCase(catalog, cfg, tel),
		UpdateProduct: appcatalog.NewUpdateProductUseCase(catalog, tel),
		AddToCart:     appcart.NewAddToCartUseCase(catalog, cfg, tel),
		Checkout:      appcheckout.NewCheckoutUseCase(cfg, registry, history, bus, clk, tel),
		ListOrders:    apporder.NewListOrdersUseCase(history, tel),
		GetOrder:      apporder.NewGetOrderUseCase(history, tel),
		VerifyPayment: apppayment.NewVerifyPaymentUseCase(registry, tel),
	}, domcart.NewSession(), cfg, registry, inbox, tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.StoreName()),
			zap.String("currency", cfg.CurrencyCode()),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Warn("event_bus_drain_incomplete", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		systemLogger.Warn("tracing_shutdown_error", zap.Error(err))
	}
}
