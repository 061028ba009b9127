package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/repositories"
	"github.com/Dosada05/contest-system/storage"
)

var errFakeSQL = errors.New("fake transaction does not run SQL")

// fakeTx stands in for *sql.Tx; the in-memory store never issues SQL through it.
type fakeTx struct{}

func (fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errFakeSQL
}

func (fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errFakeSQL
}

func (fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type membership struct {
	processID int
	groupID   int
}

// memStore is an in-memory database shared by the fake repositories. Transactions are
// serialized, which is what the row locks give the real services for the rows they touch.
type memStore struct {
	txMu sync.Mutex

	mu          sync.Mutex
	nextID      int
	contests    map[int]models.Contest
	processes   map[int]models.Process
	groups      map[int]models.Group
	memberships []membership

	lockReads   int
	failListFor map[int]error
	// beforeAdd runs inside AddToProcess before the primary key check.
	beforeAdd func(processID int)
}

func newMemStore() *memStore {
	return &memStore{
		nextID:      100,
		contests:    make(map[int]models.Contest),
		processes:   make(map[int]models.Process),
		groups:      make(map[int]models.Group),
		failListFor: make(map[int]error),
	}
}

type storeSnapshot struct {
	nextID      int
	contests    map[int]models.Contest
	processes   map[int]models.Process
	groups      map[int]models.Group
	memberships []membership
}

func (s *memStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		nextID:      s.nextID,
		contests:    make(map[int]models.Contest, len(s.contests)),
		processes:   make(map[int]models.Process, len(s.processes)),
		groups:      make(map[int]models.Group, len(s.groups)),
		memberships: append([]membership(nil), s.memberships...),
	}
	for k, v := range s.contests {
		snap.contests[k] = v
	}
	for k, v := range s.processes {
		snap.processes[k] = v
	}
	for k, v := range s.groups {
		snap.groups[k] = v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.contests = snap.contests
	s.processes = snap.processes
	s.groups = snap.groups
	s.memberships = snap.memberships
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(fakeTx{}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func requireTx(exec repositories.SQLExecutor) error {
	if _, ok := exec.(fakeTx); !ok {
		return repositories.ErrTransactionRequired
	}
	return nil
}

// seeding helpers

func (s *memStore) addContest(creator string, status models.ContestStatus) models.Contest {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Contest{ID: s.id(), Name: "contest", CreatorAccount: creator, Status: status, CreatedAt: time.Now()}
	s.contests[c.ID] = c
	return c
}

func (s *memStore) addProcess(contestID, sortValue int, status models.ProcessStatus) models.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Process{
		ID:            s.id(),
		ContestID:     contestID,
		Name:          "stage",
		Description:   "stage description",
		Sort:          sortValue,
		Status:        status,
		EndSubmitTime: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.processes[p.ID] = p
	return p
}

func (s *memStore) addGroup(contestID int, name string) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	cid := contestID
	g := models.Group{ID: s.id(), ContestID: &cid, Name: name, CaptainAccount: "captain"}
	s.groups[g.ID] = g
	return g
}

func (s *memStore) addMember(processID, groupID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, membership{processID: processID, groupID: groupID})
}

func (s *memStore) memberIDs(processID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for _, m := range s.memberships {
		if m.processID == processID {
			ids = append(ids, m.groupID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *memStore) sorts(contestID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, p := range s.processes {
		if p.ContestID == contestID {
			out = append(out, p.Sort)
		}
	}
	sort.Ints(out)
	return out
}

func (s *memStore) process(id int) (models.Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.processes[id]
	return p, ok
}

// fakeContestRepo

type fakeContestRepo struct{ s *memStore }

func (r fakeContestRepo) Create(ctx context.Context, exec repositories.SQLExecutor, c *models.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	r.s.contests[c.ID] = *c
	return nil
}

func (r fakeContestRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, repositories.ErrContestNotFound
	}
	return &c, nil
}

func (r fakeContestRepo) GetByIDForUpdate(ctx context.Context, tx repositories.SQLExecutor, id int) (*models.Contest, error) {
	if err := requireTx(tx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	r.s.lockReads++
	r.s.mu.Unlock()
	return r.GetByID(ctx, tx, id)
}

func (r fakeContestRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.ContestStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return repositories.ErrContestNotFound
	}
	c.Status = status
	r.s.contests[id] = c
	return nil
}

// fakeProcessRepo

type fakeProcessRepo struct{ s *memStore }

func (r fakeProcessRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Process) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[p.ContestID]; !ok {
		return repositories.ErrProcessContestInvalid
	}
	for _, existing := range r.s.processes {
		if existing.ContestID == p.ContestID && existing.Sort == p.Sort {
			return repositories.ErrProcessSortConflict
		}
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	r.s.processes[p.ID] = *p
	return nil
}

func (r fakeProcessRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Process, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.processes[id]
	if !ok {
		return nil, repositories.ErrProcessNotFound
	}
	return &p, nil
}

func (r fakeProcessRepo) GetByIDForUpdate(ctx context.Context, tx repositories.SQLExecutor, id int) (*models.Process, error) {
	if err := requireTx(tx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	r.s.lockReads++
	r.s.mu.Unlock()
	return r.GetByID(ctx, tx, id)
}

func (r fakeProcessRepo) GetByContestAndSort(ctx context.Context, exec repositories.SQLExecutor, contestID, sortValue int) (*models.Process, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.processes {
		if p.ContestID == contestID && p.Sort == sortValue {
			p := p
			return &p, nil
		}
	}
	return nil, repositories.ErrProcessNotFound
}

func (r fakeProcessRepo) ListByContest(ctx context.Context, exec repositories.SQLExecutor, contestID int) ([]*models.Process, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failListFor[contestID]; err != nil {
		return nil, err
	}
	var out []*models.Process
	for _, p := range r.s.processes {
		if p.ContestID == contestID {
			p := p
			out = append(out, &p)
		}
	}
	// Map order is random; the services must not depend on it.
	return out, nil
}

func (r fakeProcessRepo) Update(ctx context.Context, exec repositories.SQLExecutor, p *models.Process) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.processes[p.ID]
	if !ok {
		return repositories.ErrProcessNotFound
	}
	updated := *p
	updated.Sort = existing.Sort
	updated.ContestID = existing.ContestID
	updated.Contest = nil
	updated.AttachmentURL = nil
	r.s.processes[p.ID] = updated
	return nil
}

func (r fakeProcessRepo) UpdateAttachmentKey(ctx context.Context, exec repositories.SQLExecutor, id int, key *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.processes[id]
	if !ok {
		return repositories.ErrProcessNotFound
	}
	p.AttachmentKey = key
	r.s.processes[id] = p
	return nil
}

func (r fakeProcessRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.processes[id]; !ok {
		return repositories.ErrProcessNotFound
	}
	delete(r.s.processes, id)
	kept := r.s.memberships[:0]
	for _, m := range r.s.memberships {
		if m.processID != id {
			kept = append(kept, m)
		}
	}
	r.s.memberships = kept
	return nil
}

// fakeGroupRepo

type fakeGroupRepo struct{ s *memStore }

func (r fakeGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, g *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.groups {
		if existing.ContestID != nil && g.ContestID != nil && *existing.ContestID == *g.ContestID && existing.Name == g.Name {
			return repositories.ErrGroupNameConflict
		}
	}
	g.ID = r.s.id()
	g.CreatedAt = time.Now()
	r.s.groups[g.ID] = *g
	return nil
}

func (r fakeGroupRepo) selectGroups(match func(models.Group) bool) []*models.Group {
	var out []*models.Group
	for _, g := range r.s.groups {
		if match(g) {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func idSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (r fakeGroupRepo) ListByContest(ctx context.Context, exec repositories.SQLExecutor, contestID int) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.selectGroups(func(g models.Group) bool {
		return g.ContestID != nil && *g.ContestID == contestID
	}), nil
}

func (r fakeGroupRepo) ListByContestAndIDs(ctx context.Context, exec repositories.SQLExecutor, contestID int, ids []int) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := idSet(ids)
	return r.selectGroups(func(g models.Group) bool {
		return g.ContestID != nil && *g.ContestID == contestID && wanted[g.ID]
	}), nil
}

func (r fakeGroupRepo) members(processID int) map[int]bool {
	set := make(map[int]bool)
	for _, m := range r.s.memberships {
		if m.processID == processID {
			set[m.groupID] = true
		}
	}
	return set
}

func (r fakeGroupRepo) ListByProcess(ctx context.Context, exec repositories.SQLExecutor, processID int) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in := r.members(processID)
	return r.selectGroups(func(g models.Group) bool { return in[g.ID] }), nil
}

func (r fakeGroupRepo) ListByProcessAndIDsForUpdate(ctx context.Context, tx repositories.SQLExecutor, processID int, ids []int) ([]*models.Group, error) {
	if err := requireTx(tx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lockReads++
	in := r.members(processID)
	wanted := idSet(ids)
	return r.selectGroups(func(g models.Group) bool { return in[g.ID] && wanted[g.ID] }), nil
}

func (r fakeGroupRepo) AddToProcess(ctx context.Context, exec repositories.SQLExecutor, processID int, groupIDs []int) error {
	if len(groupIDs) == 0 {
		return nil
	}
	if r.s.beforeAdd != nil {
		r.s.beforeAdd(processID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in := r.members(processID)
	for _, id := range groupIDs {
		if in[id] {
			return repositories.ErrMembershipConflict
		}
		in[id] = true
	}
	for _, id := range groupIDs {
		r.s.memberships = append(r.s.memberships, membership{processID: processID, groupID: id})
	}
	return nil
}

func (r fakeGroupRepo) RemoveFromProcess(ctx context.Context, exec repositories.SQLExecutor, processID int, groupIDs []int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := idSet(groupIDs)
	kept := r.s.memberships[:0]
	for _, m := range r.s.memberships {
		if m.processID == processID && drop[m.groupID] {
			continue
		}
		kept = append(kept, m)
	}
	r.s.memberships = kept
	return nil
}

// fakeUploader

type fakeUploader struct {
	mu        sync.Mutex
	uploaded  map[string]string
	deleted   []string
	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded[key] = string(data)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	delete(u.uploaded, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// recordingPublisher

type publishedEvent struct {
	contestID int
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(contestID int, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{contestID: contestID, eventType: eventType, payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}
