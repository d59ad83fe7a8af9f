package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Rrens/datachat/internal/dataset"
	"github.com/Rrens/datachat/internal/domain"
	"github.com/Rrens/datachat/internal/insight"
	"github.com/Rrens/datachat/internal/visualization"
	"github.com/rs/zerolog"
)

// ErrNoDataset indicates an operation that requires a loaded dataset was
// invoked before any load
var ErrNoDataset = errors.New("no dataset loaded")

// guidanceMessage is the user-facing reply on the text paths when nothing is
// loaded; the visualization path signals ErrNoDataset instead and front ends
// convert it at the boundary.
const guidanceMessage = "Please load a dataset first."

// Session holds the currently active table, its profile and summary, and the
// accumulated chat transcript. One instance exists per running process or UI
// session; the mutex guarantees only one mutation at a time.
type Session struct {
	mu        sync.Mutex
	table     *dataset.Table
	profile   *domain.Profile
	summary   string
	history   []domain.Message
	insight   *insight.Client
	generator *visualization.Generator
	log       zerolog.Logger
}

// New creates an empty session
func New(insightClient *insight.Client, generator *visualization.Generator, log zerolog.Logger) *Session {
	return &Session{
		insight:   insightClient,
		generator: generator,
		log:       log,
	}
}

// Load reads a dataset from path and replaces the session's table, profile,
// summary and chat history. On failure the previous state is left in place.
func (s *Session) Load(path string) (*domain.Profile, error) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = table
	s.profile = table.Profile()
	s.summary = table.Summary()
	s.history = nil

	s.log.Info().
		Str("path", path).
		Int("rows", s.profile.Rows).
		Int("cols", s.profile.Cols).
		Msg("dataset loaded")

	return s.profile, nil
}

// Loaded reports whether a dataset is currently loaded
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table != nil
}

// Analyze asks the insight service for a general analysis, or for an answer
// to query when non-empty. Returns a guidance message when nothing is loaded.
func (s *Session) Analyze(ctx context.Context, query string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return guidanceMessage
	}

	return s.insight.Analyze(ctx, s.profile, s.summary, query)
}

// Chat sends a conversational message about the dataset and records both
// turns in the transcript. Returns a guidance message when nothing is loaded.
func (s *Session) Chat(ctx context.Context, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return guidanceMessage
	}

	reply := s.insight.Chat(ctx, s.profile, s.summary, s.history, message)

	s.history = append(s.history,
		domain.NewMessage(domain.RoleUser, message),
		domain.NewMessage(domain.RoleAssistant, reply),
	)

	return reply
}

// Visualize generates the requested plot categories into outDir and returns
// the generated paths. Fails with ErrNoDataset when nothing is loaded.
func (s *Session) Visualize(outDir string, categories []visualization.Category) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, ErrNoDataset
	}

	return s.generator.Generate(s.table, outDir, categories)
}

// Plan returns per-category plot count hints for the loaded dataset
func (s *Session) Plan() map[visualization.Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil
	}
	return visualization.Plan(s.profile)
}

// Profile returns the profile of the loaded dataset, or nil
func (s *Session) Profile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Summary returns the textual report of the loaded dataset
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Head returns the header row plus up to n data rows of the loaded dataset
func (s *Session) Head(n int) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil
	}
	return s.table.Head(n)
}

// Describe returns descriptive statistics per numeric column
func (s *Session) Describe() map[string]dataset.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil
	}

	stats := make(map[string]dataset.Stats, len(s.profile.NumericColumns))
	for _, col := range s.profile.NumericColumns {
		st, err := s.table.Describe(col)
		if err != nil {
			continue
		}
		stats[col] = st
	}
	return stats
}

// History returns a copy of the chat transcript
func (s *Session) History() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]domain.Message, len(s.history))
	copy(history, s.history)
	return history
}

// Clear drops the loaded dataset and the chat transcript
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = nil
	s.profile = nil
	s.summary = ""
	s.history = nil
}
