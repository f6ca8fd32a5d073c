package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher delivers audit events.  Implementations must be safe for
// concurrent use; callers treat failures as non-fatal.
type Publisher interface {
    Publish(ctx context.Context, ev AuthEvent) error
    Close() error
}

// NopPublisher discards every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuthEvent) error { return nil }
func (NopPublisher) Close() error                            { return nil }

var (
    // ErrPublishQueueFull is returned when the outbound buffer is full and
    // the event was dropped.
    ErrPublishQueueFull = errors.New("audit publish queue full")
    // ErrPublisherClosed is returned by Publish after Close.
    ErrPublisherClosed = errors.New("audit publisher closed")

    errBrokerBackoff = errors.New("broker unavailable, waiting before redial")
)

const (
    publishBuffer  = 256
    dialTimeout    = 3 * time.Second
    publishTimeout = 5 * time.Second
    minRedial      = time.Second
    maxRedial      = 30 * time.Second
)

// dial opens a broker connection with a bounded connect timeout.
func dial(url string) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Dial:      amqp.DefaultDial(dialTimeout),
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
    })
}

// AMQPPublisher publishes AuthEvents to the auth.events queue.  Publish only
// enqueues; a single background goroutine owns the broker connection and
// delivers events in order.  The connection is opened lazily and, after a
// failure, redialled no sooner than an exponentially growing delay, so a
// broker that is down never slows the caller.
type AMQPPublisher struct {
    url string
    log *zap.Logger

    events    chan AuthEvent
    done      chan struct{}
    wg        sync.WaitGroup
    closeOnce sync.Once
    deliver   func(AuthEvent) error

    // owned by the run goroutine
    conn    *amqp.Connection
    ch      *amqp.Channel
    redial  time.Duration
    retryAt time.Time
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
    return newAMQPPublisher(url, log, publishBuffer, nil)
}

// newAMQPPublisher lets tests shrink the buffer and replace delivery.
func newAMQPPublisher(url string, log *zap.Logger, buffer int, deliver func(AuthEvent) error) *AMQPPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    p := &AMQPPublisher{
        url:    url,
        log:    log,
        events: make(chan AuthEvent, buffer),
        done:   make(chan struct{}),
        redial: minRedial,
    }
    p.deliver = deliver
    if p.deliver == nil {
        p.deliver = p.send
    }
    p.wg.Add(1)
    go p.run()
    return p
}

// Publish queues ev for delivery and returns immediately.  When the buffer
// is full the event is dropped and ErrPublishQueueFull is returned.
func (p *AMQPPublisher) Publish(_ context.Context, ev AuthEvent) error {
    select {
    case <-p.done:
        return ErrPublisherClosed
    default:
    }
    select {
    case p.events <- ev:
        return nil
    default:
        p.log.Warn("rabbitmq: publish queue full, event dropped", zap.String("type", ev.Type))
        return ErrPublishQueueFull
    }
}

// Close stops the delivery goroutine after it has tried the events still
// buffered, then releases the connection.
func (p *AMQPPublisher) Close() error {
    var err error
    p.closeOnce.Do(func() {
        close(p.done)
        p.wg.Wait()
        if p.conn != nil {
            err = p.conn.Close()
        }
        p.conn, p.ch = nil, nil
    })
    return err
}

func (p *AMQPPublisher) run() {
    defer p.wg.Done()
    for {
        select {
        case ev := <-p.events:
            p.handle(ev)
        case <-p.done:
            for {
                select {
                case ev := <-p.events:
                    p.handle(ev)
                default:
                    return
                }
            }
        }
    }
}

func (p *AMQPPublisher) handle(ev AuthEvent) {
    if err := p.deliver(ev); err != nil {
        p.log.Warn("rabbitmq: event dropped", zap.String("type", ev.Type), zap.Error(err))
    }
}

// send publishes ev as a persistent JSON message.
func (p *AMQPPublisher) send(ev AuthEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    if err := p.ensureChannel(); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
    defer cancel()
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx,
        "",            // default exchange
        AuthQueueName, // routing key = queue name
        false,         // mandatory
        false,         // immediate
        pub,
    ); err != nil {
        p.reset()
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

func (p *AMQPPublisher) ensureChannel() error {
    if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
        return nil
    }
    p.reset()
    if time.Now().Before(p.retryAt) {
        return errBrokerBackoff
    }

    conn, err := dial(p.url)
    if err != nil {
        p.backoff()
        return fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        p.backoff()
        return fmt.Errorf("channel open: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(AuthQueueName, true, false, false, false, nil); err != nil {
        _ = conn.Close()
        p.backoff()
        return fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    p.redial = minRedial
    return nil
}

// backoff schedules the next dial attempt and doubles the delay.
func (p *AMQPPublisher) backoff() {
    p.retryAt = time.Now().Add(p.redial)
    if p.redial < maxRedial {
        p.redial *= 2
    }
}

func (p *AMQPPublisher) reset() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}
