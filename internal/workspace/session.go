// Package workspace holds the state of one browsing session: the open data source,
// the query being built and the save state, behind the operations a user interface
// issues.
package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/logging"
	"github.com/kyleking/sqlitegui/internal/selection"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/tracker"
)

// Listener is the presentation layer's view of a session
type Listener interface {
	OnConnectionStatusChanged(label string)
	OnLastQueryStats(rowsAffected int64, elapsed time.Duration)
}

// NopListener ignores every notification
type NopListener struct{}

func (NopListener) OnConnectionStatusChanged(string) {}

func (NopListener) OnLastQueryStats(int64, time.Duration) {}

// Options configures how a session opens data sources
type Options struct {
	Driver       storage.Driver
	QueryTimeout time.Duration
	Clock        func() time.Time
}

// Session owns at most one open data source at a time together with the query-builder
// state for it. Operations are serialized; a session is safe to share but not designed
// for concurrent use.
type Session struct {
	mu       sync.Mutex
	id       string
	opener   storage.Opener
	listener Listener
	logger   *logging.Logger
	opts     Options

	source    storage.DataSource
	catalog   *catalog.Catalog
	tracker   *tracker.Tracker
	selection *selection.Selection
	graph     *joins.Graph
}

// New creates a session with no open data source. A nil opener uses storage.Open, a nil
// listener drops notifications and a nil logger uses the global logger.
func New(opener storage.Opener, listener Listener, logger *logging.Logger, opts Options) *Session {
	if opener == nil {
		opener = storage.Open
	}

	if listener == nil {
		listener = NopListener{}
	}

	if logger == nil {
		logger = logging.GetLogger()
	}

	id := uuid.New().String()

	return &Session{
		id:        id,
		opener:    opener,
		listener:  listener,
		logger:    logger.WithField("session", id),
		opts:      opts,
		selection: selection.New(),
		graph:     joins.NewGraph(),
	}
}

// ID returns the session's unique id
func (s *Session) ID() string {
	return s.id
}

// Open replaces the current data source with the database at path. The previous
// connection is closed before the new one is opened, and the query being built is
// discarded. An empty path opens a transient in-memory database.
func (s *Session) Open(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeLocked(); err != nil {
		return err
	}

	if path == "" {
		path = storage.MemoryPath
	}

	logger := s.logger.WithField("path", path)

	var source storage.DataSource

	err := logger.Track("open", func() error {
		var err error

		source, err = s.opener(ctx, storage.OpenOptions{
			Path:         path,
			Driver:       s.opts.Driver,
			QueryTimeout: s.opts.QueryTimeout,
		})

		return err
	})
	if err != nil {
		return err
	}

	s.source = source
	s.catalog = catalog.New(source)

	var trackerOpts []tracker.Option
	if s.opts.Clock != nil {
		trackerOpts = append(trackerOpts, tracker.WithClock(s.opts.Clock))
	}

	s.tracker = tracker.New(source.Name(), s.listener, trackerOpts...)

	logger.WithField("driver", source.Driver()).Info("Opened database")

	return nil
}

// Close closes the open data source, discarding uncommitted writes and the query being
// built. Closing a session with nothing open is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	s.selection.Clear()
	s.graph.Reset()

	if s.source == nil {
		return nil
	}

	source := s.source
	s.source = nil
	s.catalog = nil
	s.tracker = nil

	if err := source.Close(); err != nil {
		return errors.NewDataSourceError(err, "failed to close database")
	}

	s.logger.WithField("path", source.Path()).Debug("Closed database")

	return nil
}

// Connected reports whether a data source is open
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.source != nil
}

func (s *Session) requireOpen() error {
	if s.source == nil {
		return errors.New(errors.ErrTypeDataSource, "no database is open").
			WithSuggestion("Open a database file first")
	}

	return nil
}

// TableList returns the user tables of the open database ordered by name
func (s *Session) TableList(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	return s.catalog.ListTables(ctx)
}

// FieldList returns the fields of table ordered by name
func (s *Session) FieldList(ctx context.Context, table string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	return s.catalog.FieldsOf(ctx, table)
}

// Fields returns every field of every table ordered by table then field
func (s *Session) Fields(ctx context.Context) ([]catalog.FieldRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	return s.catalog.ListFields(ctx)
}

// OtherFields returns every field that does not belong to table, the candidates for
// the left side of a join to table
func (s *Session) OtherFields(ctx context.Context, table string) ([]catalog.FieldRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	return s.catalog.FieldsNotOf(ctx, table)
}

// Execute runs one statement against the open database, updates the save state and
// reports the statement's statistics to the listener
func (s *Session) Execute(ctx context.Context, query string, args ...any) (*storage.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.executeLocked(ctx, query, args...)
}

func (s *Session) executeLocked(ctx context.Context, query string, args ...any) (*storage.QueryResult, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	var result *storage.QueryResult

	err := s.logger.WithField("query", query).Track("execute", func() error {
		var err error
		result, err = s.source.Execute(ctx, query, args...)

		return err
	})
	if err != nil {
		return nil, err
	}

	s.tracker.RecordExecution(result.RowsAffected)
	s.listener.OnLastQueryStats(result.RowsAffected, result.Elapsed)

	return result, nil
}

// Save commits pending writes and marks the session saved
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return err
	}

	if err := s.logger.Track("commit", func() error { return s.source.Commit(ctx) }); err != nil {
		return err
	}

	s.tracker.MarkSaved()

	return nil
}

// Revert rolls back pending writes. The save state is not changed.
func (s *Session) Revert(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return err
	}

	return s.source.Rollback(ctx)
}

// SaveAs is not available yet
func (s *Session) SaveAs(_ context.Context, _ string) error {
	return errors.NewNotImplementedError("save as")
}

// NewDatabase is not available yet
func (s *Session) NewDatabase(_ context.Context, _ string) error {
	return errors.NewNotImplementedError("new database")
}

// NewTable is not available yet
func (s *Session) NewTable(_ context.Context, _ string) error {
	return errors.NewNotImplementedError("new table")
}

// Status is a snapshot of the session for display
type Status struct {
	SessionID string
	Connected bool
	Name      string
	Path      string
	Driver    storage.Driver
	Label     string
	State     tracker.State
	LastSave  time.Time
	Pending   bool
}

// Status returns the current connection and save state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{SessionID: s.id}
	if s.source == nil {
		return st
	}

	st.Connected = true
	st.Name = s.source.Name()
	st.Path = s.source.Path()
	st.Driver = s.source.Driver()
	st.Label = s.tracker.Label()
	st.State = s.tracker.State()
	st.LastSave = s.tracker.LastSave()
	st.Pending = s.source.InTransaction()

	return st
}
