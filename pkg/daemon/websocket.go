package daemon

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/beltcalc/beltcalc/pkg/types"
)

// The daemon is local; browsers embedding the 3D preview connect from
// file:// or localhost origins.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsRequest is one capacity request on a websocket session. ID is echoed
// back so clients can drop stale replies while a slider is moving.
type wsRequest struct {
	ID string `json:"id,omitempty"`
	types.CapacityRequest
}

type wsReply struct {
	ID       string                  `json:"id,omitempty"`
	Capacity *types.CapacityResponse `json:"capacity,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// serveWs answers capacity requests for as long as the peer keeps the
// connection open and pushes daemon events in between.
func serveWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logrus.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := hub.Subscribe()
	defer sub.Close()

	replies := make(chan wsReply, 16)
	stop := make(chan struct{})
	writerDone := make(chan struct{})
	defer close(stop)

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for {
			var msg any
			select {
			case r := <-replies:
				msg = r
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				msg = ev
			case <-stop:
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				logrus.Warnf("websocket write failed, closing session: %v", err)
				// Unblocks the read loop so the peer sees the session end.
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("websocket closed unexpectedly: %v", err)
			}
			return
		}

		var req wsRequest
		var reply wsReply
		if err := json.Unmarshal(data, &req); err != nil {
			reply = wsReply{Error: err.Error()}
		} else {
			resp := evaluateCapacity(engine(), req.CapacityRequest)
			r := resp.Result
			if err := checkFinite(resp.CrossSection.AreaM2, r.AreaM2, r.VolumeFlowM3H, r.MassFlowTPH); err != nil {
				reply = wsReply{ID: req.ID, Error: err.Error()}
			} else {
				reply = wsReply{ID: req.ID, Capacity: &resp}
			}
		}

		select {
		case replies <- reply:
		case <-writerDone:
			return
		}
	}
}
