package webchat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

const wsReadTimeout = 5 * time.Second

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(httpURL, "http://", "ws://", 1)
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, msg InboundMessage) {
	t.Helper()
	require.NoError(t, websocket.JSON.Send(conn, msg))
}

func recvWS(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wsReadTimeout)))
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

// recvUntil reads frames until one of the wanted type arrives, skipping
// typing indicators and the like.
func recvUntil(t *testing.T, conn *websocket.Conn, wantType string) OutboundMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := recvWS(t, conn)
		if msg.Type == wantType {
			return msg
		}
	}
	t.Fatalf("no %q frame received", wantType)
	return OutboundMessage{}
}
