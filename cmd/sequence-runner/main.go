// Sequence Runner — процесс выполнения tracks и orchestrators.
//
// Runner:
//   - Поднимает движок выполнения поверх локального реестра задач
//     или удалённой платформы через RabbitMQ
//   - Пишет события выполнения в PostgreSQL (если доступен)
//   - Запускает периодические tracks по cron-расписанию
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/engine"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/invoke"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/mq"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/repo"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/runlog"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/schedule"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/tasks"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting sequence-runner")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// PostgreSQL — вторичный durable-лог событий. Опционален.
	var secondary runlog.Sink
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Warn("PostgreSQL not available, secondary event log disabled", "error", err)
	} else {
		defer pool.Close()
		logger.Info("database connected")
		secondary = repo.NewRunEventRepo(pool)
	}

	// Платформа выполнения: RabbitMQ, если доступен, иначе
	// in-process реестр со встроенными задачами.
	var invoker invoke.Invoker

	mqConn, err := mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, using in-process task registry", "error", err)

		registry := invoke.NewRegistry()
		tasks.Register(registry)
		invoker = registry
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		amqpInvoker, err := invoke.NewAMQPInvoker(invoke.AMQPInvokerConfig{
			Connection: mqConn,
			Logger:     logger,
		})
		if err != nil {
			logger.Error("failed to create AMQP invoker", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := amqpInvoker.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("AMQP invoker stopped", "error", err)
				cancel()
			}
		}()
		invoker = amqpInvoker
	}

	// Движок выполнения
	events := runlog.New(runlog.Config{
		Logger:    logger,
		Secondary: secondary,
	})
	defer events.Flush()

	runner := engine.New(engine.Config{
		Invoker: invoker,
		Events:  events,
		Metrics: telemetry.NewMetrics(nil),
		Logger:  logger,
	})

	// Периодические запуски
	sched := schedule.New(schedule.Config{
		Runner: runner,
		Logger: logger,
	})

	if err := addHeartbeat(sched); err != nil {
		logger.Error("failed to schedule heartbeat track", "error", err)
		os.Exit(1)
	}

	sched.Start()
	defer sched.Stop()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if v := os.Getenv("RUNNER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("sequence-runner stopped")
}

// addHeartbeat регистрирует периодический heartbeat track.
//
// Выполняет transform-задачу по расписанию и подтверждает живость
// движка и платформы выполнения в логах и метриках.
func addHeartbeat(sched *schedule.Scheduler) error {
	expr := os.Getenv("HEARTBEAT_CRON")
	if expr == "" {
		expr = "@every 1m"
	}

	track, err := domain.NewTrack(domain.TrackConfig{
		Name: "heartbeat",
		Tasks: []domain.TaskRef{
			{ID: tasks.TaskTransform},
		},
	})
	if err != nil {
		return err
	}

	tenant := os.Getenv("HEARTBEAT_TENANT")
	if tenant == "" {
		tenant = "system"
	}
	project := os.Getenv("HEARTBEAT_PROJECT")
	if project == "" {
		project = "runner"
	}

	input := &domain.RunInput{
		TenantID:  tenant,
		ProjectID: project,
		Payload: map[string]any{
			"mappings": map[string]any{
				"status": "alive",
			},
		},
	}

	return sched.AddTrack(expr, track, input)
}
