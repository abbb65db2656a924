// Package httphost adapts an HTTP listener for in-process use behind
// core.HostBridge: each inbound request is translated into a
// core.Value dict and handed to a language-level callback function.
//
// Grounded on mod-http-server/main.go's listen/stop/list-ports
// operations and its httpHandler callback round-trip, adapted from a
// channel-based wait on a reply arriving over a second unix-socket
// connection into a direct, synchronous call into the evaluator — the
// channel/pending-map machinery existed only to cross the
// module-process boundary mod-http-server spoke JSON-RPC over.
//
// core/engine.go documents the evaluator as single-threaded
// cooperative; net/http dispatches each request on its own goroutine,
// so callbackMu serializes calls into the evaluator the way the
// distilled spec's §5 "single evaluator instance" model requires even
// though the HTTP server itself is concurrent.
package httphost

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sprig-lang/sprig/core"
)

// Callback receives one decoded request and returns the response
// Value dict {status int, headers dict, body string} or an error.
type Callback func(req core.Value) (core.Value, error)

type Server struct {
	mu        sync.Mutex
	listeners map[int]*http.Server

	callbackMu sync.Mutex
	callback   Callback
}

func NewServer(cb Callback) *Server {
	return &Server{listeners: make(map[int]*http.Server), callback: cb}
}

func (s *Server) Listen(port int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listeners[port]; exists {
		return "", fmt.Errorf("already listening on %d", port)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.handler(),
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return "", err
	}
	s.listeners[port] = srv
	go srv.Serve(ln)

	return fmt.Sprintf("listening on %d", port), nil
}

func (s *Server) Stop(port int) (string, error) {
	s.mu.Lock()
	srv, exists := s.listeners[port]
	if exists {
		delete(s.listeners, port)
	}
	s.mu.Unlock()
	if !exists {
		return "", fmt.Errorf("not listening on %d", port)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("stopped %d", port), nil
}

func (s *Server) ListPorts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ports := make([]int, 0, len(s.listeners))
	for p := range s.listeners {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

func (s *Server) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		headerPairs := make([]core.Value, 0, len(r.Header))
		for k := range r.Header {
			headerPairs = append(headerPairs, core.ListVal([]core.Value{core.StringVal(k), core.StringVal(r.Header.Get(k))}))
		}

		reqValue := core.ListVal([]core.Value{
			core.ListVal([]core.Value{core.StringVal("method"), core.StringVal(r.Method)}),
			core.ListVal([]core.Value{core.StringVal("path"), core.StringVal(r.URL.Path)}),
			core.ListVal([]core.Value{core.StringVal("query"), core.StringVal(r.URL.RawQuery)}),
			core.ListVal([]core.Value{core.StringVal("headers"), core.ListVal(headerPairs)}),
			core.ListVal([]core.Value{core.StringVal("body"), core.StringVal(string(body))}),
		})

		s.callbackMu.Lock()
		resp, err := s.callback(reqValue)
		s.callbackMu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		status, bodyOut := 200, ""
		if resp.Kind == core.ValList {
			for _, pair := range *resp.List {
				if pair.Kind != core.ValList || len(*pair.List) != 2 {
					continue
				}
				k, v := (*pair.List)[0], (*pair.List)[1]
				switch k.Str {
				case "status":
					if v.Kind == core.ValInt {
						status = int(v.Int)
					}
				case "headers":
					if v.Kind == core.ValList {
						for _, h := range *v.List {
							if h.Kind == core.ValList && len(*h.List) == 2 {
								w.Header().Set((*h.List)[0].String(), (*h.List)[1].String())
							}
						}
					}
				case "body":
					bodyOut = v.String()
				}
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(bodyOut))
	})
}
