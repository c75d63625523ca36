package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/wms-core/internal/application/gatepass"
	"github.com/jhoicas/wms-core/internal/application/indent"
	"github.com/jhoicas/wms-core/internal/application/ledger"
	"github.com/jhoicas/wms-core/internal/application/sequence"
	"github.com/jhoicas/wms-core/internal/domain/repository"
	"github.com/jhoicas/wms-core/internal/infrastructure/events"
	"github.com/jhoicas/wms-core/internal/infrastructure/memory"
	"github.com/jhoicas/wms-core/internal/infrastructure/metrics"
	"github.com/jhoicas/wms-core/internal/infrastructure/natsbus"
	"github.com/jhoicas/wms-core/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/wms-core/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/wms-core/internal/interfaces/http"
	"github.com/jhoicas/wms-core/pkg/config"
	"github.com/jhoicas/wms-core/pkg/jwt"
	"github.com/jhoicas/wms-core/pkg/logger"
)

// storage repositorios y runner de transacciones del backend elegido.
type storage struct {
	ledgerTx   ledger.TxRunner
	gatePassTx gatepass.TxRunner
	indentTx   indent.TxRunner
	items      repository.InventoryItemRepository
	txs        repository.TransactionRepository
	passes     repository.GatePassRepository
	indents    repository.IndentRepository
	sequences  repository.SequenceStore
	pinger     httpRouter.Pinger
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sequence_backend", cfg.Sequence.Backend).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	allocator := sequence.NewAllocator(st.sequences, sequence.Config{
		CallTimeout: cfg.Sequence.CallTimeout,
	}, log.Component("sequence"), m)

	// Eventos: log siempre; NATS JetStream si hay URL. El libro se suscribe en proceso
	// para registrar las devoluciones de pases y las recepciones de solicitudes.
	dispatcher := events.NewDispatcher().AddPublisher(events.NewLogPublisher(log.Component("events")))
	if cfg.NATS.URL != "" {
		pub, err := natsbus.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer func() { _ = pub.Close() }()
		dispatcher.AddPublisher(pub)
	}

	ledgerUC := ledger.NewUseCase(st.ledgerTx, st.items, st.txs, allocator, dispatcher, log.Component("ledger"), m, ledger.Config{
		QueryTimeout: cfg.DB.QueryTimeout,
	})
	dispatcher.Subscribe(ledger.NewGoodsReceipt(ledgerUC))

	var signer gatepass.TokenSigner
	if cfg.GatePass.TokenSecret != "" {
		signer = jwt.NewGatePassSigner(cfg.GatePass.TokenSecret, cfg.GatePass.TokenIssuer)
	} else {
		log.Warn().Msg("GATEPASS_TOKEN_SECRET vacío: verificación offline deshabilitada")
	}
	gatePassUC := gatepass.NewUseCase(st.gatePassTx, st.passes, allocator, signer, dispatcher, log.Component("gatepass"), m, gatepass.Config{
		QueryTimeout: cfg.DB.QueryTimeout,
	})
	indentUC := indent.NewUseCase(st.indentTx, st.indents, allocator, dispatcher, log.Component("indent"), m, indent.Config{
		QueryTimeout: cfg.DB.QueryTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		LedgerUC:    ledgerUC,
		GatePassUC:  gatePassUC,
		IndentUC:    indentUC,
		JWTSecret:   cfg.JWT.Secret,
		Storage:     st.pinger,
		Metrics:     reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage con backend memory todo vive en proceso (desarrollo local sin PostgreSQL);
// en otro caso los datos van a PostgreSQL y el contador a PostgreSQL o Redis.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Sequence.Backend == config.SequenceBackendMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			ledgerTx:   store,
			gatePassTx: store,
			indentTx:   store,
			items:      store.Items(),
			txs:        store.Transactions(),
			passes:     store.GatePasses(),
			indents:    store.Indents(),
			sequences:  store.Sequences(),
			close:      func() {},
		}, nil
	}

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		return nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool)
	st := &storage{
		ledgerTx:   txRunner,
		gatePassTx: txRunner,
		indentTx:   txRunner,
		items:      postgres.NewInventoryItemRepository(pool),
		txs:        postgres.NewTransactionRepository(pool),
		passes:     postgres.NewGatePassRepository(pool),
		indents:    postgres.NewIndentRepository(pool),
		sequences:  postgres.NewSequenceStore(pool),
		pinger:     txRunner,
		close:      pool.Close,
	}

	if cfg.Sequence.Backend == config.SequenceBackendRedis {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			pool.Close()
			return nil, err
		}
		st.sequences = infraredis.NewSequenceStore(client, cfg.Redis.Prefix)
		st.close = func() {
			_ = client.Close()
			pool.Close()
		}
	}
	return st, nil
}
