package evmrpc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HeadSubscriber keeps the latest block height fresh between polls by
// subscribing to newHeads over websocket. Connection loss triggers reconnect
// with exponential backoff; the subscriber never surfaces errors to its
// owner, it just keeps trying until stopped.
type HeadSubscriber struct {
	url      string
	onHeight func(int64)

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewHeadSubscriber(url string, onHeight func(int64)) *HeadSubscriber {
	return &HeadSubscriber{
		url:      url,
		onHeight: onHeight,
	}
}

// Start begins the connection loop.
func (s *HeadSubscriber) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop terminates the subscriber and waits for the loop to exit.
func (s *HeadSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.closeConn()
	s.wg.Wait()
}

func (s *HeadSubscriber) runLoop(ctx context.Context) {
	defer s.wg.Done()

	retry := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			delay := backoffDelay(retry)
			retry++
			zap.L().Warn("Head subscription connect failed",
				zap.String("url", s.url),
				zap.Int("retry", retry),
				zap.Duration("delay", delay),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		s.readLoop(ctx)
	}
}

func backoffDelay(retry int) time.Duration {
	if retry > 5 {
		retry = 5
	}
	return time.Duration(1<<uint(retry)) * time.Second
}

func (s *HeadSubscriber) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	subscribe := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "eth_subscribe",
		"params":  []string{"newHeads"},
		"id":      1,
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return nil
}

type headNotification struct {
	Params struct {
		Result struct {
			Number string `json:"number"`
		} `json:"result"`
	} `json:"params"`
}

func (s *HeadSubscriber) readLoop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	defer s.closeConn()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				zap.L().Debug("Head subscription read failed", zap.Error(err))
			}
			return
		}

		var head headNotification
		if err := json.Unmarshal(msg, &head); err != nil || head.Params.Result.Number == "" {
			continue
		}

		height, err := parseHexQuantity(head.Params.Result.Number)
		if err != nil {
			continue
		}
		s.onHeight(height.Int64())
	}
}

func (s *HeadSubscriber) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
