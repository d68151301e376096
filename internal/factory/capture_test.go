package factory

import (
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaimeRLA/CorrelationGame/internal/live"
	"github.com/JaimeRLA/CorrelationGame/internal/testutil"
)

// captureClient subscribes to an app's live hub over a real websocket
type captureClient struct {
	server   *httptest.Server
	conn     *websocket.Conn
	messages chan []byte
}

func newCaptureClient(app *TestApp) *captureClient {
	server := httptest.NewServer(live.NewHandler(app.Hub, nil, testutil.NopLogger()))
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		panic(err)
	}

	c := &captureClient{server: server, conn: conn, messages: make(chan []byte, 16)}
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				close(c.messages)
				return
			}
			c.messages <- msg
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for app.Hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return c
}

func (c *captureClient) close() {
	_ = c.conn.Close()
	c.server.Close()
}
