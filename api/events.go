package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// handleGetNetworkEvents pushes the network status once on connect and
// again after every connectivity change.
func (a *Api) handleGetNetworkEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		if a.reporter == nil {
			a.jsonError(w, "Connectivity events are not available", http.StatusNotImplemented)
			return
		}

		if !a.trackEvents() {
			a.jsonError(w, "Api is shutting down", http.StatusServiceUnavailable)
			return
		}

		defer a.events.Done()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())

		var pumps sync.WaitGroup

		defer func() {
			cancel()
			_ = c.Close()
			pumps.Wait()
		}()

		// read pump
		pumps.Add(1)
		go func() {
			defer pumps.Done()
			defer cancel()

			c.SetReadLimit(512)
			_ = c.SetReadDeadline(time.Now().Add(pongWait))
			c.SetPongHandler(func(string) error {
				return c.SetReadDeadline(time.Now().Add(pongWait))
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					return
				}
			}
		}()

		changes := make(chan struct{})

		// taken before the first push so no change goes unnoticed
		state := a.reporter.CurrentState()

		// state watcher
		pumps.Add(1)
		go func() {
			defer pumps.Done()

			for a.reporter.WaitForStateChange(ctx, state) {
				state = a.reporter.CurrentState()

				select {
				case changes <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		if err := a.writeStatus(c); err != nil {
			return
		}

		// write pump
		for {
			select {
			case <-changes:
				if err := a.writeStatus(c); err != nil {
					return
				}
			case <-ticker.C:
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-a.closing:
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			case <-ctx.Done():
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
		}
	}
}

func (a *Api) writeStatus(c *websocket.Conn) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))

	err := c.WriteJSON(a.networkStatus())
	if err != nil {
		a.log.Debugf("Could not write network event: %v", err)
	}

	return err
}
