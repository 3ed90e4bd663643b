package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chess10kp/locus-overlay/internal/overlay"
)

var (
	ErrServerRunning = errors.New("IPC server already running")
	ErrNoSocket      = errors.New("no socket path configured")
)

const (
	ReplyOK   = "ok"
	ReplyPong = "pong"

	readTimeout = 2 * time.Second
	maxMessage  = 1024
)

// Submitter accepts visibility requests from any goroutine.
type Submitter interface {
	Submit(req overlay.Request) bool
}

// Server listens on a unix socket for one-line commands and forwards them to the
// toggle queue. It never touches UI state itself.
type Server struct {
	socketPath string
	queue      Submitter

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

func NewServer(socketPath string, queue Submitter) *Server {
	return &Server{
		socketPath: socketPath,
		queue:      queue,
	}
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerRunning
	}
	if s.socketPath == "" {
		return ErrNoSocket
	}

	// A socket file nobody answers on is left over from a crash.
	if _, err := os.Stat(s.socketPath); err == nil {
		if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
			conn.Close()
			return fmt.Errorf("%w: another instance is listening on %s", ErrServerRunning, s.socketPath)
		}
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.running = true

	log.Printf("[IPC] Listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections(listener)

	return nil
}

func (s *Server) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) acceptConnections(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.isRunning() {
				return
			}
			log.Printf("[IPC] Error accepting connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(readTimeout))

	reader := bufio.NewReader(io.LimitReader(conn, maxMessage))
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Printf("[IPC] Error reading from connection: %v", err)
		return
	}

	message := strings.TrimSpace(line)
	log.Printf("[IPC] Received: %q", message)

	reply := s.handleMessage(message)
	if _, err := fmt.Fprintln(conn, reply); err != nil {
		log.Printf("[IPC] Error writing reply: %v", err)
	}
}

func (s *Server) handleMessage(message string) string {
	if strings.EqualFold(message, "ping") {
		return ReplyPong
	}

	req, ok := overlay.ParseRequest(message)
	if !ok {
		return fmt.Sprintf("error: unknown command %q", message)
	}
	if !s.queue.Submit(req) {
		return "error: request queue full"
	}
	return ReplyOK
}

func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	s.mu.Unlock()

	err := listener.Close()
	s.wg.Wait()

	if _, statErr := os.Stat(s.socketPath); statErr == nil {
		os.Remove(s.socketPath)
	}

	log.Println("[IPC] Server stopped")
	return err
}
