package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"
)

// Server accepts TCP subscribers and registers them with the hub.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Run listens until Close is called. It returns nil after a clean Close.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.Hub.logger.Info("tcp sync listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Hub.logger.Warn("tcp sync accept", "error", err)
			continue
		}

		s.Hub.welcome(conn)
		s.Hub.Add(conn)
		s.Hub.logger.Info("tcp sync client connected", "remote", conn.RemoteAddr().String())

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Hub.logger.Info("tcp sync client disconnected", "remote", c.RemoteAddr().String())
			}()

			// Clients only listen; drain anything they send until they hang up.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
