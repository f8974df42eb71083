package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/propserve/internal/logger"
	"github.com/bastiangx/propserve/pkg/completion"
	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for key completions
type Server struct {
	provider *completion.Provider
	workers  int
	reader   io.Reader
	encoder  *msgpack.Encoder
	log      *log.Logger
	mu       sync.Mutex
}

// NewServer creates a completion server using stdin/stdout for IPC
func NewServer(provider *completion.Provider, workers int) *Server {
	return NewServerWithIO(provider, workers, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a completion server on the given streams
func NewServerWithIO(provider *completion.Provider, workers int, r io.Reader, w io.Writer) *Server {
	if workers < 1 {
		workers = 1
	}
	enc := msgpack.NewEncoder(w)
	return &Server{
		provider: provider,
		workers:  workers,
		reader:   r,
		encoder:  enc,
		log:      logger.New("server"),
	}
}

// Start reads requests until EOF or ctx is done, then waits for the
// requests still being served.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.", "workers", s.workers)

	p := pool.New().WithMaxGoroutines(s.workers)
	defer p.Wait()

	s.sendResponse(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client disconnected (EOF)")
				return nil
			}
			s.log.Errorf("Reading from stdin: %v", err)
			return err
		}

		var request Request
		if err := msgpack.Unmarshal(raw, &request); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}

		p.Go(func() {
			s.handleRequest(ctx, request)
		})
	}
}

// handleRequest dispatches one decoded request
func (s *Server) handleRequest(ctx context.Context, request Request) {
	switch request.Action {
	case "complete":
		s.handleComplete(ctx, request)
	case "stats":
		s.sendResponse(StatsResponse{ID: request.ID, Status: "ok", Stats: s.provider.Stats()})
	case "reload":
		s.handleReload(request)
	case "health":
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), 400)
	}
}

func (s *Server) handleComplete(ctx context.Context, request Request) {
	start := time.Now()
	items := s.provider.Complete(ctx, request.Text, completion.Position{
		Line:      request.Line,
		Character: request.Character,
	})
	elapsed := time.Since(start)

	response := CompletionResponse{
		ID:        request.ID,
		Items:     make([]CompletionItem, 0, len(items)),
		Count:     len(items),
		TimeTaken: elapsed.Microseconds(),
	}
	for _, it := range items {
		response.Items = append(response.Items, CompletionItem{
			Label:  it.Label,
			Detail: it.Detail,
			Kind:   it.Kind,
		})
	}
	s.log.Debugf("Took [ %v ] for request %s", elapsed, request.ID)
	s.sendResponse(response)
}

func (s *Server) handleReload(request Request) {
	if request.Source == "" {
		s.sendError(request.ID, "Missing 'source' parameter", 400)
		return
	}
	status := "missing"
	if s.provider.Forget(request.Source) {
		status = "ok"
	}
	s.sendResponse(StatusResponse{ID: request.ID, Status: status})
}

// sendResponse encodes one response; writes from the worker pool are serialised.
func (s *Server) sendResponse(response any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
