package ws

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var ErrClosed = errors.New("connection is closed")

// Client pumps frames between a websocket connection and the R/W channels.
// Inbound text frames appear on R, which is closed when the peer goes away.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte

	w         chan []byte
	compress  bool
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, compress bool) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn:     conn,
		R:        make(chan []byte, 16),
		w:        make(chan []byte, 128),
		compress: compress,
		done:     make(chan struct{}),
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)
	defer c.Close()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t != websocket.TextMessage && t != websocket.BinaryMessage {
			continue
		}

		if c.compress {
			if msg, err = Decompress(msg); err != nil {
				continue
			}
		}

		select {
		case c.R <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) runWriter() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Conn.Close()

	for {
		select {
		case msg := <-c.w:
			frame := websocket.TextMessage
			if c.compress {
				var err error
				if msg, err = Compress(msg); err != nil {
					continue
				}
				frame = websocket.BinaryMessage
			}

			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(frame, msg); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.Conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}

// Write queues msg for the writer goroutine. It fails once the connection is
// closed.
func (c *Client) Write(msg []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.w <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
