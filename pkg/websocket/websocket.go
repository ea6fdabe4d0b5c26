package websocketPkg

import (
	"PoseDetection/internal/entity"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var ErrClientClosed = errors.New("pose detection client is closed")

// IWebsocket is the adapter to the external pose landmark model.
type IWebsocket interface {
	ProcessPoseFrame(ctx context.Context, frame []byte) (*entity.PoseDetectionResult, error)
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type Options struct {
	URL                    string
	HandshakeTimeout       time.Duration
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	PingInterval           time.Duration
	ReconnectBackoff       time.Duration
	ReconnectMaxBackoff    time.Duration
	ModelComplexity        int
	MinDetectionConfidence float64
}

func DefaultOptions() Options {
	return Options{
		URL:                    "ws://localhost:8001/api/v1/pose/ws",
		HandshakeTimeout:       10 * time.Second,
		ReadTimeout:            30 * time.Second,
		WriteTimeout:           5 * time.Second,
		PingInterval:           30 * time.Second,
		ReconnectBackoff:       time.Second,
		ReconnectMaxBackoff:    30 * time.Second,
		ModelComplexity:        2,
		MinDetectionConfidence: 0.5,
	}
}

type webSocketClient struct {
	conn   *websocket.Conn
	closed bool
	// mu guards conn and closed. It is never held across network I/O other
	// than control frames.
	mu sync.Mutex
	// frameMu keeps a single frame in flight on the shared connection.
	frameMu   sync.Mutex
	lost      chan struct{}
	done      chan struct{}
	opts      Options
	validator *validator.Validate
	log       *logrus.Logger
	json      jsoniter.API
}

// NewAIWebSocketClient returns a client and keeps it connected in the background,
// retrying with exponential backoff whenever the connection is missing.
func NewAIWebSocketClient(opts Options, logger *logrus.Logger) IWebsocket {
	client := newClient(opts, logger)

	go client.maintain()

	return client
}

func newClient(opts Options, logger *logrus.Logger) *webSocketClient {
	defaults := DefaultOptions()
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaults.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaults.PingInterval
	}
	if opts.ReconnectBackoff <= 0 {
		opts.ReconnectBackoff = defaults.ReconnectBackoff
	}
	if opts.ReconnectMaxBackoff < opts.ReconnectBackoff {
		opts.ReconnectMaxBackoff = max(opts.ReconnectBackoff, defaults.ReconnectMaxBackoff)
	}

	return &webSocketClient{
		lost:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		opts:      opts,
		validator: validator.New(),
		log:       logger,
		json:      jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

// maintain dials until connected, then waits for the connection to be lost and
// starts over. It returns once the client is closed.
func (c *webSocketClient) maintain() {
	backoff := c.opts.ReconnectBackoff

	for {
		err := c.Reconnect()
		if errors.Is(err, ErrClientClosed) {
			return
		}

		if err != nil {
			c.log.Warnf("Pose detection service unavailable: %v. Retrying in %s", err, backoff)

			timer := time.NewTimer(backoff)
			select {
			case <-c.done:
				timer.Stop()
				return
			case <-timer.C:
			}

			backoff = min(backoff*2, c.opts.ReconnectMaxBackoff)
			continue
		}

		backoff = c.opts.ReconnectBackoff

		select {
		case <-c.done:
			return
		case <-c.lost:
		}
	}
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

// Reconnect dials the pose detection service unless a live connection already
// exists. The dial runs without holding mu.
func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	target, err := c.dialURL()
	if err != nil {
		return err
	}

	c.log.Infof("Connecting to pose detection service at %s", target)

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.opts.HandshakeTimeout,
	}

	conn, _, err := dialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.opts.WriteTimeout))
		if err != nil {
			c.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		conn.Close()
		return ErrClientClosed
	}
	if c.conn != nil {
		// Lost the race to a concurrent dial; keep the connection in use.
		conn.Close()
		return nil
	}

	c.conn = conn
	c.log.Info("Successfully connected to pose detection service")

	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
	}
	if c.conn == nil {
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteTimeout)); err != nil {
		c.log.Debugf("Error sending close frame: %v", err)
	}
	c.conn.Close()
	c.conn = nil
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		if !c.isCurrent(conn) {
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.opts.WriteTimeout))
		if err != nil {
			c.log.Warnf("Ping failed for pose detection service, marking connection as dead: %v", err)
			c.drop(conn)
			return
		}
	}
}

func (c *webSocketClient) isCurrent(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn == conn
}

func (c *webSocketClient) getConnection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.conn == nil {
		return nil, errors.New("not connected to pose detection service")
	}

	return c.conn, nil
}

// drop forgets conn and wakes the reconnect loop.
func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	conn.Close()

	select {
	case c.lost <- struct{}{}:
	default:
	}
}

// ProcessPoseFrame sends one encoded RGB frame and waits for the landmark result.
func (c *webSocketClient) ProcessPoseFrame(ctx context.Context, frame []byte) (*entity.PoseDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.frameMu.Lock()
	defer c.frameMu.Unlock()

	conn, err := c.getConnection()
	if errors.Is(err, ErrClientClosed) {
		return nil, err
	}
	if err != nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("cannot connect to pose detection service: %w", err)
		}
		conn, err = c.getConnection()
		if err != nil {
			return nil, err
		}
	}

	if err := conn.SetWriteDeadline(c.deadline(ctx, c.opts.WriteTimeout)); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error setting write deadline: %w", err)
	}

	c.log.Debugf("Sending pose frame of size: %d bytes", len(frame))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending pose frame: %w", err)
	}

	if err := conn.SetReadDeadline(c.deadline(ctx, c.opts.ReadTimeout)); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error setting read deadline: %w", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error reading pose message: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result entity.PoseDetectionResult
	if err := c.json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling pose response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("pose model error: %s", result.Error)
	}

	if result.Detected && len(result.WorldLandmarks) == 0 {
		return nil, errors.New("pose model reported a detection without landmarks")
	}

	if err := c.validator.Struct(result); err != nil {
		return nil, fmt.Errorf("invalid pose response: %w", err)
	}

	c.log.Debugf("Pose Detection Result: detected=%t, landmarks=%d", result.Detected, len(result.WorldLandmarks))

	return &result, nil
}

func (c *webSocketClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *webSocketClient) dialURL() (string, error) {
	if c.opts.URL == "" {
		return "", errors.New("URL for pose detection not configured")
	}

	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", fmt.Errorf("invalid pose detection URL: %w", err)
	}

	q := u.Query()
	q.Set("static_image_mode", "true")
	q.Set("model_complexity", strconv.Itoa(c.opts.ModelComplexity))
	if c.opts.MinDetectionConfidence > 0 {
		q.Set("min_detection_confidence", strconv.FormatFloat(c.opts.MinDetectionConfidence, 'f', -1, 64))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
