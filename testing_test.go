package redis

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pior/redis/resp"
)

// testServer is a minimal in-process server speaking just enough RESP2 for
// the tests: GET, SET (with NX and PX), DEL, INCRBY, DECRBY, PING.
type testServer struct {
	t  *testing.T
	ln net.Listener

	mu   sync.Mutex
	data map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &testServer{
		t:    t,
		ln:   ln,
		data: make(map[string]string),
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *testServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *testServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn runs the same buffered reassembly loop a real server would:
// decode frames out of whatever has arrived, read more while incomplete,
// drop the connection on malformed input.
func (s *testServer) handleConn(conn net.Conn) {
	defer conn.Close()

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		for len(buf) > 0 {
			v, rest, err := resp.Decode(buf)
			if err != nil {
				if resp.IsIncomplete(err) {
					break
				}
				return
			}
			reply := s.dispatch(v)
			if _, err := conn.Write(resp.AppendValue(nil, reply)); err != nil {
				return
			}
			buf = append(buf[:0], rest...)
		}

		n, err := conn.Read(chunk)
		if err != nil {
			return
		}
		buf = append(buf, chunk[:n]...)
	}
}

func errorReply(msg string) resp.Value {
	return resp.Value{Type: resp.TypeError, Data: []byte(msg)}
}

func simpleReply(msg string) resp.Value {
	return resp.Value{Type: resp.TypeSimpleString, Data: []byte(msg)}
}

func (s *testServer) dispatch(v resp.Value) resp.Value {
	if v.Type != resp.TypeArray || v.Null || len(v.Elems) == 0 {
		return errorReply("ERR protocol error: expected command array")
	}
	args := make([]string, len(v.Elems))
	for i, elem := range v.Elems {
		if elem.Type != resp.TypeBulkString || elem.Null {
			return errorReply("ERR protocol error: expected bulk string argument")
		}
		args[i] = elem.Text()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToUpper(args[0]) {
	case "PING":
		return simpleReply("PONG")

	case "GET":
		if len(args) != 2 {
			return errorReply("ERR wrong number of arguments for 'get' command")
		}
		val, ok := s.data[args[1]]
		if !ok {
			return resp.Value{Type: resp.TypeBulkString, Null: true}
		}
		return resp.Value{Type: resp.TypeBulkString, Data: []byte(val)}

	case "SET":
		if len(args) < 3 {
			return errorReply("ERR wrong number of arguments for 'set' command")
		}
		nx := false
		for _, opt := range args[3:] {
			switch strings.ToUpper(opt) {
			case "NX":
				nx = true
			case "PX": // TTL accepted and ignored; the test store never expires
			}
		}
		if nx {
			if _, exists := s.data[args[1]]; exists {
				return resp.Value{Type: resp.TypeBulkString, Null: true}
			}
		}
		s.data[args[1]] = args[2]
		return simpleReply("OK")

	case "DEL":
		var n int64
		for _, key := range args[1:] {
			if _, ok := s.data[key]; ok {
				delete(s.data, key)
				n++
			}
		}
		return resp.Value{Type: resp.TypeInteger, Int: n}

	case "INCRBY", "DECRBY":
		if len(args) != 3 {
			return errorReply("ERR wrong number of arguments")
		}
		delta, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return errorReply("ERR value is not an integer or out of range")
		}
		if strings.ToUpper(args[0]) == "DECRBY" {
			delta = -delta
		}
		current := int64(0)
		if val, ok := s.data[args[1]]; ok {
			current, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return errorReply("ERR value is not an integer or out of range")
			}
		}
		current += delta
		s.data[args[1]] = strconv.FormatInt(current, 10)
		return resp.Value{Type: resp.TypeInteger, Int: current}
	}

	return errorReply("ERR unknown command '" + args[0] + "'")
}

func newTestClient(t *testing.T, s *testServer) *Client {
	t.Helper()

	client, err := NewClient(NewStaticServers(s.Addr()), Config{MaxSize: 4})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}
