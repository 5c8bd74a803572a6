package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"campool/internal/domain"
	"campool/internal/redis"
	"campool/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockRequestRepository is a mock implementation of RequestRepository.
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.RideRequest

	// Counters for verification
	CreateCallCount  int32
	ClaimCallCount   int32
	ReleaseCallCount int32
	CancelCallCount  int32

	// Error injection
	CreateError error
	GetError    error
	ClaimError  error
	CancelError error
}

// NewMockRequestRepository creates a new mock request repository.
func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*domain.RideRequest),
	}
}

// AddRequest adds a request to the mock repository.
func (m *MockRequestRepository) AddRequest(req *domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = cloneRequest(req)
}

func (m *MockRequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (m *MockRequestRepository) ListSearching(ctx context.Context, limit int) ([]*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideRequest, 0)
	for _, req := range m.requests {
		if req.Status == domain.RequestStatusSearching {
			result = append(result, cloneRequest(req))
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockRequestRepository) ListSearchingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideRequest, 0)
	for _, req := range m.requests {
		if req.Status == domain.RequestStatusSearching && req.ExpiresAt.Before(cutoff) {
			result = append(result, cloneRequest(req))
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockRequestRepository) ClaimForMatch(ctx context.Context, requestID, matchID string, matchedWith []string) (bool, error) {
	atomic.AddInt32(&m.ClaimCallCount, 1)
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != domain.RequestStatusSearching {
		return false, nil
	}
	req.Status = domain.RequestStatusMatched
	req.MatchID = matchID
	req.MatchedWith = append([]string(nil), matchedWith...)
	return true, nil
}

func (m *MockRequestRepository) ReleaseFromMatch(ctx context.Context, requestID string) (bool, error) {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status.IsTerminal() {
		return false, nil
	}
	req.Status = domain.RequestStatusSearching
	req.MatchID = ""
	req.MatchedWith = nil
	return true, nil
}

func (m *MockRequestRepository) TransitionStatus(ctx context.Context, requestID string, from, to domain.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

func (m *MockRequestRepository) Cancel(ctx context.Context, requestID string, from domain.RequestStatus, reason string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.CancelError != nil {
		return false, m.CancelError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if req.Status != from {
		return false, nil
	}
	req.Status = domain.RequestStatusCancelled
	req.CancelReason = reason
	req.CancelledAt = at
	return true, nil
}

// GetRequest returns the stored request for test assertions.
func (m *MockRequestRepository) GetRequest(id string) *domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil
	}
	return cloneRequest(req)
}

func (m *MockRequestRepository) snapshot() map[string]*domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.RideRequest, len(m.requests))
	for id, req := range m.requests {
		snap[id] = cloneRequest(req)
	}
	return snap
}

func (m *MockRequestRepository) restore(snap map[string]*domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = snap
}

// ──────────────────────────────────────────────
// MOCK MATCH REPOSITORY
// ──────────────────────────────────────────────

// MockMatchRepository is a mock implementation of MatchRepository.
type MockMatchRepository struct {
	mu      sync.RWMutex
	matches map[string]*domain.RideMatch

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockMatchRepository creates a new mock match repository.
func NewMockMatchRepository() *MockMatchRepository {
	return &MockMatchRepository{
		matches: make(map[string]*domain.RideMatch),
	}
}

// AddMatch adds a match to the mock repository.
func (m *MockMatchRepository) AddMatch(match *domain.RideMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = cloneMatch(match)
}

func (m *MockMatchRepository) Create(ctx context.Context, match *domain.RideMatch) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = cloneMatch(match)
	return nil
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id string) (*domain.RideMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneMatch(match), nil
}

func (m *MockMatchRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideMatch, error) {
	return m.GetByID(ctx, id)
}

func (m *MockMatchRepository) Update(ctx context.Context, match *domain.RideMatch, expected domain.MatchStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.matches[match.ID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if stored.Status != expected {
		return false, nil
	}
	m.matches[match.ID] = cloneMatch(match)
	return true, nil
}

func (m *MockMatchRepository) ListPendingDepartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideMatch, 0)
	for _, match := range m.matches {
		if match.Status == domain.MatchStatusPending && match.DepartureTime.Before(cutoff) {
			result = append(result, cloneMatch(match))
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockMatchRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideMatch, 0)
	for _, match := range m.matches {
		if match.Status == domain.MatchStatusPending && match.CreatedAt.Before(cutoff) {
			result = append(result, cloneMatch(match))
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// GetMatch returns the stored match for test assertions.
func (m *MockMatchRepository) GetMatch(id string) *domain.RideMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil
	}
	return cloneMatch(match)
}

// Matches returns all stored matches for test assertions.
func (m *MockMatchRepository) Matches() []*domain.RideMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideMatch, 0, len(m.matches))
	for _, match := range m.matches {
		result = append(result, cloneMatch(match))
	}
	return result
}

func (m *MockMatchRepository) snapshot() map[string]*domain.RideMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.RideMatch, len(m.matches))
	for id, match := range m.matches {
		snap[id] = cloneMatch(match)
	}
	return snap
}

func (m *MockMatchRepository) restore(snap map[string]*domain.RideMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = snap
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, cloneNotification(n))
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			result = append(result, cloneNotification(m.notifications[i]))
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// ByUser returns stored notifications for a user, for test assertions.
func (m *MockNotificationRepository) ByUser(userID string) []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, cloneNotification(n))
		}
	}
	return result
}

// ByType returns stored notifications of a type, for test assertions.
func (m *MockNotificationRepository) ByType(t domain.NotificationType) []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for _, n := range m.notifications {
		if n.Type == t {
			result = append(result, cloneNotification(n))
		}
	}
	return result
}

func (m *MockNotificationRepository) snapshot() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make([]*domain.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		snap = append(snap, cloneNotification(n))
	}
	return snap
}

func (m *MockNotificationRepository) restore(snap []*domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = snap
}

// ──────────────────────────────────────────────
// MOCK TASK REPOSITORY
// ──────────────────────────────────────────────

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.ScheduledTask

	// Counters for verification
	CreateCallCount   int32
	MarkDoneCallCount int32
}

// NewMockTaskRepository creates a new mock task repository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		tasks: make(map[string]*domain.ScheduledTask),
	}
}

// AddTask adds a task to the mock repository.
func (m *MockTaskRepository) AddTask(task *domain.ScheduledTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *task
	m.tasks[task.ID] = &copy
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.ScheduledTask) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *task
	m.tasks[task.ID] = &copy
	return nil
}

func (m *MockTaskRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ScheduledTask, 0)
	for _, task := range m.tasks {
		if !task.Done && !task.FireAt.After(now) {
			copy := *task
			result = append(result, &copy)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockTaskRepository) MarkDone(ctx context.Context, id string) error {
	atomic.AddInt32(&m.MarkDoneCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	task.Done = true
	return nil
}

func (m *MockTaskRepository) CancelForMatch(ctx context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		if task.MatchID == matchID {
			task.Done = true
		}
	}
	return nil
}

// TasksForMatch returns stored tasks for a match, for test assertions.
func (m *MockTaskRepository) TasksForMatch(matchID string) []*domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ScheduledTask, 0)
	for _, task := range m.tasks {
		if task.MatchID == matchID {
			copy := *task
			result = append(result, &copy)
		}
	}
	return result
}

func (m *MockTaskRepository) snapshot() map[string]*domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.ScheduledTask, len(m.tasks))
	for id, task := range m.tasks {
		copy := *task
		snap[id] = &copy
	}
	return snap
}

func (m *MockTaskRepository) restore(snap map[string]*domain.ScheduledTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = snap
}

// ──────────────────────────────────────────────
// MOCK CHAT REPOSITORY
// ──────────────────────────────────────────────

// MockChatRepository is a mock implementation of ChatRepository.
type MockChatRepository struct {
	mu       sync.RWMutex
	messages []*domain.ChatMessage

	// Counters for verification
	CreateCallCount int32
}

// NewMockChatRepository creates a new mock chat repository.
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *msg
	m.messages = append(m.messages, &copy)
	return nil
}

// Messages returns stored chat messages for test assertions.
func (m *MockChatRepository) Messages() []*domain.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ChatMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		copy := *msg
		result = append(result, &copy)
	}
	return result
}

func (m *MockChatRepository) snapshot() []*domain.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make([]*domain.ChatMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		copy := *msg
		snap = append(snap, &copy)
	}
	return snap
}

func (m *MockChatRepository) restore(snap []*domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = snap
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Error injection
	GetError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			copy := *user
			result[id] = &copy
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TX MANAGER
// ──────────────────────────────────────────────

// MockTxManager runs the unit of work against the in-memory mocks. On error
// it restores every repository to its pre-transaction state, so rollback
// semantics hold for atomicity assertions.
type MockTxManager struct {
	Requests      *MockRequestRepository
	Matches       *MockMatchRepository
	Notifications *MockNotificationRepository
	Tasks         *MockTaskRepository
	Chat          *MockChatRepository

	// Counters for verification
	TxCallCount       int32
	RollbackCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxManager creates a transaction manager over the given mocks.
func NewMockTxManager(
	requests *MockRequestRepository,
	matches *MockMatchRepository,
	notifications *MockNotificationRepository,
	tasks *MockTaskRepository,
	chat *MockChatRepository,
) *MockTxManager {
	return &MockTxManager{
		Requests:      requests,
		Matches:       matches,
		Notifications: notifications,
		Tasks:         tasks,
		Chat:          chat,
	}
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(uow *repository.UnitOfWork) error) error {
	atomic.AddInt32(&m.TxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}

	reqSnap := m.Requests.snapshot()
	matchSnap := m.Matches.snapshot()
	notifSnap := m.Notifications.snapshot()
	taskSnap := m.Tasks.snapshot()
	chatSnap := m.Chat.snapshot()

	err := fn(&repository.UnitOfWork{
		Requests:      m.Requests,
		Matches:       m.Matches,
		Notifications: m.Notifications,
		Tasks:         m.Tasks,
		Chat:          m.Chat,
	})
	if err != nil {
		atomic.AddInt32(&m.RollbackCallCount, 1)
		m.Requests.restore(reqSnap)
		m.Matches.restore(matchSnap)
		m.Notifications.restore(notifSnap)
		m.Tasks.restore(taskSnap)
		m.Chat.restore(chatSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockOriginIndex is a mock implementation of OriginIndexInterface.
type MockOriginIndex struct {
	mu      sync.RWMutex
	origins map[string]redis.RequestOrigin

	// Counters for verification
	AddCallCount    int32
	RemoveCallCount int32

	// Error injection
	FindError error
}

// NewMockOriginIndex creates a new mock origin index.
func NewMockOriginIndex() *MockOriginIndex {
	return &MockOriginIndex{
		origins: make(map[string]redis.RequestOrigin),
	}
}

func (m *MockOriginIndex) Add(ctx context.Context, requestID string, lat, lng float64) error {
	atomic.AddInt32(&m.AddCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origins[requestID] = redis.RequestOrigin{RequestID: requestID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockOriginIndex) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]redis.RequestOrigin, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.RequestOrigin, 0, len(m.origins))
	for _, origin := range m.origins {
		result = append(result, origin)
	}
	return result, nil
}

func (m *MockOriginIndex) Remove(ctx context.Context, requestID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.origins, requestID)
	return nil
}

// Has reports whether a request is currently indexed.
func (m *MockOriginIndex) Has(requestID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.origins[requestID]
	return ok
}

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[requestID] {
		return false, nil
	}
	m.locks[requestID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRequestLock(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, requestID)
	return nil
}

// HoldLock pre-takes a lock so the next acquire fails.
func (m *MockLockStore) HoldLock(requestID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[requestID] = true
}

// ──────────────────────────────────────────────
// MOCK PUSHER
// ──────────────────────────────────────────────

// PushRecord captures one call to the mock pusher.
type PushRecord struct {
	UserIDs  []string
	Title    string
	Body     string
	Priority domain.NotificationPriority
}

// MockPusher is a Pusher that records sends.
type MockPusher struct {
	mu    sync.Mutex
	sends []PushRecord

	// Error injection
	SendError error
}

// NewMockPusher creates a new mock pusher.
func NewMockPusher() *MockPusher {
	return &MockPusher{}
}

func (m *MockPusher) Send(ctx context.Context, userIDs []string, title, body string, data map[string]string, priority domain.NotificationPriority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, PushRecord{
		UserIDs:  append([]string(nil), userIDs...),
		Title:    title,
		Body:     body,
		Priority: priority,
	})
	if m.SendError != nil {
		return m.SendError
	}
	return nil
}

// Sends returns the recorded pushes.
func (m *MockPusher) Sends() []PushRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PushRecord(nil), m.sends...)
}

// ──────────────────────────────────────────────
// CLONE HELPERS
// ──────────────────────────────────────────────

func cloneRequest(req *domain.RideRequest) *domain.RideRequest {
	copy := *req
	copy.MatchedWith = append([]string(nil), req.MatchedWith...)
	return &copy
}

func cloneMatch(match *domain.RideMatch) *domain.RideMatch {
	copy := *match
	copy.RequestIDs = append([]string(nil), match.RequestIDs...)
	copy.Participants = append([]domain.Participant(nil), match.Participants...)
	copy.Confirmations = append([]string(nil), match.Confirmations...)
	return &copy
}

func cloneNotification(n *domain.Notification) *domain.Notification {
	copy := *n
	if n.Data != nil {
		copy.Data = make(map[string]string, len(n.Data))
		for k, v := range n.Data {
			copy.Data[k] = v
		}
	}
	return &copy
}
