// Package app is the life log engine. It owns the repositories and the
// clean coordinator, keeps them in sync with other execution contexts
// sharing the store, and is the only thing the CLI, board and API talk to.
package app

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/config"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/lifecycle"
	"tableflip.dev/lifelog/pkg/repository"
	"tableflip.dev/lifelog/pkg/store"
)

var (
	ErrUnknownCategory = errors.New("app: unknown category")
	ErrArchiveNotFound = errors.New("app: archive not found")
)

// Options configure a Service.
type Options struct {
	Keys config.Keys
	// SyncLogs reloads the active logs when another context rewrites them.
	// Archives and alerts always sync.
	SyncLogs bool
	Logger   *log.Logger
	// Location is used to combine a date and a time of day. Defaults to
	// time.Local.
	Location *time.Location
}

// Service provides the engine operations. It is safe for concurrent use;
// store callbacks arrive on background goroutines.
type Service struct {
	store    store.Store
	logs     *repository.Logs
	archives *repository.Archives
	alerts   *repository.Alerts
	clean    *lifecycle.Coordinator
	logger   *log.Logger
	loc      *time.Location
	now      func() time.Time

	// mu serializes operations spanning more than one repository.
	mu sync.Mutex

	cancels   []func()
	events    *broadcaster
	closeOnce sync.Once
}

// Open opens the store described by cfg and builds a Service on it. The
// Service owns the store and closes it on Close.
func Open(cfg config.Config, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = store.DefaultLogger()
	}
	s, err := store.Open(cfg.StoreOptions(), logger)
	if err != nil {
		return nil, err
	}
	return New(s, Options{
		Keys:     cfg.Keys,
		SyncLogs: cfg.Sync.Logs,
		Logger:   logger,
	}), nil
}

// New builds a Service on s, loading every aggregate.
func New(s store.Store, opts Options) *Service {
	def := config.Default().Keys
	if opts.Keys.Logs == "" {
		opts.Keys.Logs = def.Logs
	}
	if opts.Keys.Archives == "" {
		opts.Keys.Archives = def.Archives
	}
	if opts.Keys.Alerts == "" {
		opts.Keys.Alerts = def.Alerts
	}
	if opts.Logger == nil {
		opts.Logger = store.DefaultLogger()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	svc := &Service{
		store:    s,
		logs:     repository.NewLogs(s, opts.Keys.Logs, opts.Logger),
		archives: repository.NewArchives(s, opts.Keys.Archives, opts.Logger),
		alerts:   repository.NewAlerts(s, opts.Keys.Alerts, opts.Logger),
		logger:   opts.Logger,
		loc:      opts.Location,
		now:      time.Now,
		events:   newBroadcaster(),
	}
	svc.clean = lifecycle.New(svc.logs, svc.archives)

	svc.subscribe(opts.Keys.Archives, AggregateArchives, svc.archives.Reload)
	svc.subscribe(opts.Keys.Alerts, AggregateAlerts, svc.alerts.Reload)
	if opts.SyncLogs {
		svc.subscribe(opts.Keys.Logs, AggregateLogs, svc.logs.Reload)
	}
	return svc
}

// subscribe reloads an aggregate whenever another context rewrites it.
// Last writer wins; there is no merge.
func (s *Service) subscribe(key string, agg Aggregate, reload func()) {
	cancel := s.store.OnExternalChange(key, func() {
		reload()
		s.events.emit(Event{Aggregate: agg, External: true})
	})
	s.cancels = append(s.cancels, cancel)
}

// Close drops the store subscriptions, ends every Watch stream and closes
// the store.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, cancel := range s.cancels {
			cancel()
		}
		s.events.close()
		err = s.store.Close()
	})
	return err
}

func (s *Service) changed(agg Aggregate) {
	s.events.emit(Event{Aggregate: agg})
}

func checkCategory(cat category.Key) error {
	if !category.Valid(cat) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return nil
}

// Categories returns the fixed categories in display order.
func (s *Service) Categories() []category.Category {
	return category.All()
}

// AddLog files a note. when is an RFC 3339 instant or a YYYY-MM-DD day,
// which means midnight in the Service location; it defaults to now. A
// blank activity or unparseable when returns nil, nil.
func (s *Service) AddLog(cat category.Key, activity, when string) (*entry.LogEntry, error) {
	if err := checkCategory(cat); err != nil {
		return nil, err
	}
	if n, ok := entry.Normalize(when, s.loc); ok {
		when = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.logs.Add(cat, activity, when)
	if err != nil || e == nil {
		return e, err
	}
	s.changed(AggregateLogs)
	return e, nil
}

// AddLogAt files a note on a YYYY-MM-DD date at an HH:MM time of day.
// A missing date means today; a missing time means the current time of
// day.
func (s *Service) AddLogAt(cat category.Key, activity, date, clock string) (*entry.LogEntry, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" && clock == "" {
		return s.AddLog(cat, activity, "")
	}
	now := s.now().In(s.loc)
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if clock == "" {
		clock = now.Format("15:04")
	}
	when, ok := alert.Deadline(date, clock, s.loc)
	if !ok {
		if err := checkCategory(cat); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.AddLog(cat, activity, when)
}

// DeleteLog removes one entry. It reports false when there is none.
func (s *Service) DeleteLog(cat category.Key, id string) (bool, error) {
	if err := checkCategory(cat); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.logs.Delete(cat, id)
	if ok {
		s.changed(AggregateLogs)
	}
	return ok, err
}

// Logs returns a copy of the active logs.
func (s *Service) Logs() entry.Logs {
	return s.logs.All()
}

// LogsFor returns the entries of cat sorted by date for display. The
// stored order is untouched.
func (s *Service) LogsFor(cat category.Key) ([]entry.LogEntry, error) {
	if err := checkCategory(cat); err != nil {
		return nil, err
	}
	return entry.SortedByDate(s.logs.For(cat)), nil
}

// ArchiveNow snapshots the active logs without clearing them.
func (s *Service) ArchiveNow() (archive.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.archives.Create(s.logs.All())
	if err != nil {
		return archive.Item{}, err
	}
	s.changed(AggregateArchives)
	return it, nil
}

// Archives lists snapshots newest first.
func (s *Service) Archives() archive.List {
	return s.archives.List()
}

// Archive returns one snapshot.
func (s *Service) Archive(id string) (archive.Item, error) {
	it, ok := s.archives.Get(id)
	if !ok {
		return archive.Item{}, fmt.Errorf("%w: %s", ErrArchiveNotFound, id)
	}
	return it, nil
}

// RestoreArchive replaces the active logs with a copy of archive id. The
// archive is kept.
func (s *Service) RestoreArchive(id string) (entry.Logs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs, err := s.archives.Restore(id)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.logs.ReplaceAll(logs); err != nil {
		return nil, err
	}
	s.changed(AggregateLogs)
	return logs.Clone(), nil
}

// DeleteArchive removes one snapshot. It reports false when there is none.
func (s *Service) DeleteArchive(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.archives.Delete(id)
	if ok {
		s.changed(AggregateArchives)
	}
	return ok, err
}

// AddAlert files a task due at deadline, an RFC 3339 instant or a
// YYYY-MM-DD day (midnight in the Service location). A blank task or
// unusable deadline returns nil, nil.
func (s *Service) AddAlert(cat category.Key, task, deadline string) (*alert.Alert, error) {
	if err := checkCategory(cat); err != nil {
		return nil, err
	}
	if n, ok := entry.Normalize(deadline, s.loc); ok {
		deadline = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.alerts.Add(cat, task, deadline)
	if err != nil || a == nil {
		return a, err
	}
	s.changed(AggregateAlerts)
	return a, nil
}

// AddAlertAt files a task due on a YYYY-MM-DD date at an HH:MM time of
// day. Both parts are required.
func (s *Service) AddAlertAt(cat category.Key, task, date, clock string) (*alert.Alert, error) {
	deadline, ok := alert.Deadline(date, clock, s.loc)
	if !ok {
		if err := checkCategory(cat); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.AddAlert(cat, task, deadline)
}

// CompleteAlert marks an alert done. It reports false when there is none.
func (s *Service) CompleteAlert(cat category.Key, id string) (bool, error) {
	if err := checkCategory(cat); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.alerts.All()
	ok, err := s.alerts.Complete(cat, id)
	if ok && err == nil && !alreadyDone(before[cat], id) {
		s.changed(AggregateAlerts)
	}
	return ok, err
}

func alreadyDone(list []alert.Alert, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return a.Done
		}
	}
	return false
}

// DeleteAlert removes an alert. It reports false when there is none.
func (s *Service) DeleteAlert(cat category.Key, id string) (bool, error) {
	if err := checkCategory(cat); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.alerts.Delete(cat, id)
	if ok {
		s.changed(AggregateAlerts)
	}
	return ok, err
}

// Alerts returns a copy of every alert.
func (s *Service) Alerts() alert.Alerts {
	return s.alerts.All()
}

// IsOverdue reports whether cat has an open alert past its deadline at
// now. Unknown categories are never overdue.
func (s *Service) IsOverdue(cat category.Key, now time.Time) bool {
	return s.alerts.IsOverdue(cat, now)
}

// OverdueCategories lists the categories overdue at now in display order.
func (s *Service) OverdueCategories(now time.Time) []category.Key {
	return s.alerts.OverdueCategories(now)
}

// UpcomingAlerts lists open alerts due within window from now.
func (s *Service) UpcomingAlerts(now time.Time, window time.Duration) []repository.Upcoming {
	return s.alerts.DueWithin(now, window)
}

// RequestClean starts a clean of the active logs.
func (s *Service) RequestClean() (lifecycle.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clean.RequestClean()
}

// CancelClean abandons a pending clean.
func (s *Service) CancelClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clean.Cancel()
}

// ChooseArchiveThenClean takes the archive-first path of a pending clean.
func (s *Service) ChooseArchiveThenClean() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clean.ChooseArchiveThenClean()
}

// ChooseCleanWithoutArchive takes the no-archive path of a pending clean.
func (s *Service) ChooseCleanWithoutArchive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clean.ChooseCleanWithoutArchive()
}

// ConfirmArchiveThenClean archives and then clears the active logs.
func (s *Service) ConfirmArchiveThenClean() (archive.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.clean.ConfirmArchiveThenClean()
	if it.ID != "" {
		s.changed(AggregateArchives)
	}
	if err == nil {
		s.changed(AggregateLogs)
	}
	return it, err
}

// ConfirmCleanWithoutArchive clears the active logs for good. phrase must
// be lifecycle.DiscardPhrase.
func (s *Service) ConfirmCleanWithoutArchive(phrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clean.ConfirmCleanWithoutArchive(phrase); err != nil {
		return err
	}
	s.changed(AggregateLogs)
	return nil
}

// CleanState is the state of the clean coordinator.
func (s *Service) CleanState() lifecycle.State {
	return s.clean.State()
}
