package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

const (
	setupAttempts = 3
	setupBackoff  = 500 * time.Millisecond
)

// CacheInvalidator часть сценария, нужная слушателю
type CacheInvalidator interface {
	InvalidateDoctorRules(ctx context.Context, doctorID json_types.ID)
	InvalidateAllRules(ctx context.Context)
}

// CacheHitListener слушает события об изменении правил доступности,
// сделанных в обход движка, и сбрасывает кэш правил
type CacheHitListener struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	invalidator CacheInvalidator
	cfg         *config.Config
	logger      out.LoggerPort

	consumerWg sync.WaitGroup
	cancel     context.CancelFunc
	closeOnce  sync.Once
}

func NewCacheHitListener(invalidator CacheInvalidator, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	logger = logger.WithModule("RabbitMQListener")

	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &CacheHitListener{
		conn:        conn,
		channel:     channel,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	exchangeName := l.cfg.RabbitMQ.Exchange
	queueName := l.cfg.RabbitMQ.Queue
	bindingKey := l.cfg.RabbitMQ.Bind

	err := l.retry("exchange_declare", func() error {
		return l.channel.ExchangeDeclare(
			exchangeName, // имя обменника
			"topic",      // тип обменника
			true,         // durable
			false,        // auto-delete
			false,        // internal
			false,        // no-wait
			nil,          // аргументы
		)
	})
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}

	var queue amqp.Queue
	err = l.retry("queue_declare", func() error {
		var declareErr error
		queue, declareErr = l.channel.QueueDeclare(
			queueName,
			true,  // durable
			true,  // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		return declareErr
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	err = l.retry("queue_bind", func() error {
		return l.channel.QueueBind(queue.Name, bindingKey, exchangeName, false, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	consumerID := fmt.Sprintf("consumer-%s-%d", queue.Name, time.Now().UnixNano())
	var msgs <-chan amqp.Delivery
	err = l.retry("consume", func() error {
		var consumeErr error
		msgs, consumeErr = l.channel.Consume(
			queue.Name,
			consumerID,
			false, // auto-ack, подтверждаем вручную
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,   // args
		)
		return consumeErr
	})
	if err != nil {
		return fmt.Errorf("failed to consume from queue %s: %w", queue.Name, err)
	}

	l.logger.Info("rabbitmq.queue.started", out.LogFields{
		"queue":    queue.Name,
		"binding":  bindingKey,
		"exchange": exchangeName,
	})

	consumeCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.consumerWg.Add(1)
	go func() {
		defer l.consumerWg.Done()
		l.consume(consumeCtx, queue.Name, msgs)
	}()

	return nil
}

func (l *CacheHitListener) consume(ctx context.Context, queueName string, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("rabbitmq.consumer.stopping", out.LogFields{
				"queue": queueName,
			})
			return
		case msg, ok := <-msgs:
			if !ok {
				l.logger.Warn("rabbitmq.consumer.channel_closed", out.LogFields{
					"queue": queueName,
				})
				return
			}

			l.logger.Debug("rabbitmq.message.received", out.LogFields{
				"routingKey": msg.RoutingKey,
				"messageId":  msg.MessageId,
			})

			if err := l.processMessage(ctx, msg.RoutingKey, msg.Body); err != nil {
				l.logger.Error("rabbitmq.process_message.failed", out.LogFields{
					"routingKey": msg.RoutingKey,
					"messageId":  msg.MessageId,
					"error":      err.Error(),
				})

				// Битое сообщение в очередь не возвращаем
				if err := msg.Nack(false, false); err != nil {
					l.logger.Error("rabbitmq.message.nack_failed", out.LogFields{
						"error": err.Error(),
					})
				}
				continue
			}

			if err := msg.Ack(false); err != nil {
				l.logger.Error("rabbitmq.message.ack_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}
	}
}

func (l *CacheHitListener) retry(step string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= setupAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		l.logger.Warn("rabbitmq."+step+".retry", out.LogFields{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < setupAttempts {
			time.Sleep(setupBackoff)
		}
	}
	return err
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	var err error
	l.closeOnce.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
		l.consumerWg.Wait()

		if closeErr := l.channel.Close(); closeErr != nil {
			err = closeErr
		}
		if closeErr := l.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
