package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/bus"
	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/subscription"
	"main/pkg/exception"
)

// Handler is a websocket-backed data queue handler. One shared connection
// serves every subscribed configuration; decoded ticks land in per-config
// bounded queues whose pull side is handed to the feed.
type Handler struct {
	ctx context.Context
	wss *ws.WebSocket

	mu      sync.Mutex
	reqID   int64
	entries map[subscription.Config]*wsEntry
}

type wsEntry struct {
	queue  *bus.PointQueue
	cancel func()
}

func NewHandler(ctx context.Context, url string) *Handler {
	return &Handler{
		ctx:     ctx,
		wss:     ws.New(ctx, url),
		entries: make(map[subscription.Config]*wsEntry),
	}
}

// StartWebsocket dials the endpoint.
func (h *Handler) StartWebsocket(ctx context.Context) error {
	if err := h.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

// Close drops the connection and stops every queue.
func (h *Handler) Close() {
	h.mu.Lock()
	entries := make([]*wsEntry, 0, len(h.entries))
	for cfg, entry := range h.entries {
		entries = append(entries, entry)
		delete(h.entries, cfg)
	}
	h.mu.Unlock()
	for _, entry := range entries {
		entry.cancel()
		entry.queue.Stop()
	}
	h.wss.Close()
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type subscribeResponse struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

func subscribeResponseParser(m ws.Message) (subscribeResponse, bool) {
	var resp subscribeResponse
	err := m.Unmarshal(&resp)
	return resp, err == nil
}

// tickMessage is the wire form of one trade tick.
type tickMessage struct {
	Channel string          `json:"channel"`
	Symbol  string          `json:"symbol"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	TsMilli int64           `json:"ts"`
}

func channelName(cfg subscription.Config) string {
	return fmt.Sprintf("%s@trade", strings.ToLower(cfg.Symbol.Ticker))
}

// Subscribe sends the channel subscription and returns the pull side of
// the bridge queue. Auxiliary configurations share the trade channel and
// simply yield nothing; the endpoint carries no corporate actions.
func (h *Handler) Subscribe(cfg subscription.Config, notifier func()) (enumerator.Enumerator, error) {
	h.mu.Lock()
	if _, exists := h.entries[cfg]; exists {
		h.mu.Unlock()
		return nil, errors.Errorf("already subscribed: %s %s", cfg.Symbol, cfg.DataKind)
	}
	h.reqID++
	reqID := h.reqID
	h.mu.Unlock()

	queue := bus.NewPointQueue(1024, bus.OverflowDropNewest, notifier)
	if cfg.DataKind.IsAuxiliary() {
		// Keep the queue open so the aux synchronizer sees a silent
		// stream rather than a stopped one.
		h.storeEntry(cfg, &wsEntry{queue: queue, cancel: func() {}})
		return queue, nil
	}

	if err := h.sendSubscribe(cfg, "SUBSCRIBE", reqID); err != nil {
		return nil, err
	}

	ch, cancel := h.wss.Subscribe()
	h.storeEntry(cfg, &wsEntry{queue: queue, cancel: cancel})
	go h.consume(cfg, ch, queue, cancel)
	return queue, nil
}

func (h *Handler) storeEntry(cfg subscription.Config, entry *wsEntry) {
	h.mu.Lock()
	h.entries[cfg] = entry
	h.mu.Unlock()
}

func (h *Handler) sendSubscribe(cfg subscription.Config, method string, reqID int64) error {
	if err := h.wss.SendAndWait(h.ctx, ws.Sidecar{
		Sender: func(ctx context.Context, wss *ws.WebSocket) error {
			payload := subscribeRequest{
				Method: method,
				Params: []string{channelName(cfg)},
				ID:     reqID,
			}
			if err := wss.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := subscribeResponseParser(m)
			if !ok || resp.ID != reqID {
				return false, nil
			}
			if resp.Result != nil {
				return false, errors.Errorf("%s rejected, err: %+v", method, resp.Result)
			}
			return true, nil
		},
	}, true); err != nil {
		return errors.Wrap(err, "send and wait")
	}
	return nil
}

func (h *Handler) consume(cfg subscription.Config, ch <-chan ws.Message, queue *bus.PointQueue, cancel func()) {
	defer cancel()
	defer queue.Stop()
	loc := cfg.DataLocation()
	channel := channelName(cfg)
	for {
		select {
		case <-sys.Shutdown():
			return
		case <-h.ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				queue.Fail(exception.ErrProducerFault)
				return
			}
			tick, ok := ws.ReadMessage[tickMessage](m)
			if !ok || tick.Channel != channel {
				continue
			}
			at := time.UnixMilli(tick.TsMilli).In(loc)
			queue.Enqueue(&model.DataPoint{
				Symbol:    cfg.Symbol,
				StartTime: at,
				EndTime:   at,
				Payload: &model.Tick{
					Type:     enum.TickTypeTrade,
					Value:    tick.Price,
					Quantity: tick.Size,
				},
			})
		}
	}
}

// Unsubscribe sends the channel removal and stops the bridge queue.
func (h *Handler) Unsubscribe(cfg subscription.Config) error {
	h.mu.Lock()
	entry, ok := h.entries[cfg]
	if ok {
		delete(h.entries, cfg)
	}
	h.reqID++
	reqID := h.reqID
	h.mu.Unlock()
	if !ok {
		return errors.Errorf("not subscribed: %s %s", cfg.Symbol, cfg.DataKind)
	}

	entry.cancel()
	entry.queue.Stop()
	if cfg.DataKind.IsAuxiliary() {
		return nil
	}
	if err := h.sendSubscribe(cfg, "UNSUBSCRIBE", reqID); err != nil {
		logs.Warnf("unsubscribe %s, err: %+v", cfg.Symbol, err)
	}
	return nil
}
