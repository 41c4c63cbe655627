package statusservice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

// WsConn is interface for websocket handling in status service
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	WriteJSON(v interface{}) error
}

// SubscribeFunc is invoked after a connection subscribes to a job
type SubscribeFunc func(conn WsConn, jobID string)

// WSConnKeeper keeps websocket connections grouped by job ID
type WSConnKeeper struct {
	jobConns map[string]map[WsConn]struct{}
	connJob  map[WsConn]string
	lock     sync.Mutex
	timeOut  time.Duration

	// OnSubscribe is optional, it may push the current job state
	OnSubscribe SubscribeFunc
}

// NewWSConnKeeper creates manager, idle connections are dropped after timeOut
func NewWSConnKeeper(timeOut time.Duration) *WSConnKeeper {
	if timeOut <= 0 {
		timeOut = time.Minute * 30
	}
	return &WSConnKeeper{jobConns: map[string]map[WsConn]struct{}{}, connJob: map[WsConn]string{}, timeOut: timeOut}
}

// HandleConnection reads job IDs from the connection until it is closed or idle.
// The last received ID is the job the connection is subscribed to
func (kp *WSConnKeeper) HandleConnection(conn WsConn) error {
	defer kp.remove(conn)
	defer conn.Close()
	readCh, done := make(chan string), make(chan struct{})
	defer close(done)
	go func() {
		defer close(readCh)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				goapp.Log.Debug().Err(err).Msg("read ended")
				return
			}
			msg := strings.TrimSpace(string(message))
			goapp.Log.Debug().Str("msg", goapp.Sanitize(msg)).Msg("got msg")
			if msg == "" {
				time.Sleep(20 * time.Millisecond)
				continue
			}
			select {
			case readCh <- msg:
			case <-done:
				return
			}
		}
	}()

	ta := time.After(kp.timeOut)
loop:
	for {
		select {
		case <-ta:
			goapp.Log.Debug().Msg("conn timeout")
			break loop
		case id, ok := <-readCh:
			if !ok {
				break loop
			}
			kp.save(conn, id)
			if kp.OnSubscribe != nil {
				kp.OnSubscribe(conn, id)
			}
			ta = time.After(kp.timeOut)
		}
	}
	return nil
}

func (kp *WSConnKeeper) remove(conn WsConn) {
	kp.lock.Lock()
	defer kp.lock.Unlock()
	kp.removeNoSync(conn)
	goapp.Log.Info().Int("active", len(kp.connJob)).Msg("ws connection closed")
}

func (kp *WSConnKeeper) removeNoSync(conn WsConn) {
	id, found := kp.connJob[conn]
	if !found {
		return
	}
	if conns, found := kp.jobConns[id]; found {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(kp.jobConns, id)
		}
	}
	delete(kp.connJob, conn)
}

func (kp *WSConnKeeper) save(conn WsConn, id string) {
	kp.lock.Lock()
	defer kp.lock.Unlock()
	kp.removeNoSync(conn)
	kp.connJob[conn] = id
	conns, found := kp.jobConns[id]
	if !found {
		conns = map[WsConn]struct{}{}
		kp.jobConns[id] = conns
	}
	conns[conn] = struct{}{}
	goapp.Log.Info().Str("ID", id).Int("active", len(kp.connJob)).Msg("ws subscribed")
}

// GetConnections returns connections subscribed to the job
func (kp *WSConnKeeper) GetConnections(id string) ([]WsConn, bool) {
	kp.lock.Lock()
	defer kp.lock.Unlock()
	cm, found := kp.jobConns[id]
	if !found {
		return nil, false
	}
	res := make([]WsConn, 0, len(cm))
	for c := range cm {
		res = append(res, c)
	}
	return res, true
}

// Size returns the count of subscribed connections
func (kp *WSConnKeeper) Size() int {
	kp.lock.Lock()
	defer kp.lock.Unlock()
	return len(kp.connJob)
}

// PushCurrent returns SubscribeFunc sending the stored job state to a new subscriber
func PushCurrent(store JobLoader) SubscribeFunc {
	return func(conn WsConn, jobID string) {
		ctx, cf := context.WithTimeout(context.Background(), 5*time.Second)
		defer cf()
		job, err := store.Get(ctx, jobID)
		if err != nil {
			goapp.Log.Error().Err(err).Str("ID", jobID).Msg("can't load job")
			return
		}
		if job == nil {
			return
		}
		if err := sendMsg(conn, mapJob(job)); err != nil {
			goapp.Log.Warn().Err(err).Send()
		}
	}
}
