// Package bookapitest provides an in-memory books service for tests.
package bookapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// Server is a fake of the external books resource with fault injection.
// It follows json-server semantics: PUT replaces the whole record, unknown
// ids answer 404 and a duplicate id on POST answers 500.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	books    []domain.Book
	failNext []int
	down     bool
	delay    time.Duration
	calls    map[string]int
}

// New starts a fake seeded with books. Callers must Close it.
func New(books ...domain.Book) *Server {
	s := &Server{
		books: domain.CloneBooks(books),
		calls: make(map[string]int),
	}
	if s.books == nil {
		s.books = []domain.Book{}
	}

	r := chi.NewRouter()
	r.Use(s.faults)
	r.Get("/books", s.list)
	r.Post("/books", s.create)
	r.Get("/books/{id}", s.get)
	r.Put("/books/{id}", s.update)
	r.Delete("/books/{id}", s.remove)

	s.Server = httptest.NewServer(r)
	return s
}

// Books returns a copy of the stored collection.
func (s *Server) Books() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneBooks(s.books)
}

// FailNext makes the next request answer status instead of being served.
// Calls queue up.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, status)
}

// SetDown drops every connection without a response while down is true.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many requests reached method on path, e.g. Calls("GET", "/books").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		down, delay := s.down, s.delay
		var status int
		if !down && len(s.failNext) > 0 {
			status = s.failNext[0]
			s.failNext = s.failNext[1:]
		}
		s.mu.Unlock()

		if down {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Books())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	i := domain.IndexOf(s.books, bookID)
	var book domain.Book
	if i >= 0 {
		book = s.books[i].Clone()
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	if book.ID == 0 {
		book.ID = s.nextIDLocked()
	}
	if domain.IndexOf(s.books, book.ID) >= 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "duplicate id"})
		return
	}
	s.books = append(s.books, book.Clone())
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r)
	if !ok {
		return
	}

	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	book.ID = bookID

	s.mu.Lock()
	i := domain.IndexOf(s.books, bookID)
	if i >= 0 {
		s.books[i] = book.Clone()
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	i := domain.IndexOf(s.books, bookID)
	if i >= 0 {
		s.books = append(s.books[:i], s.books[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) nextIDLocked() int64 {
	var maxID int64
	for _, b := range s.books {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	return maxID + 1
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return 0, false
	}
	return bookID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
