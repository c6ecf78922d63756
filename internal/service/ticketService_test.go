package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"queueline-app/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueueRepo is an in-memory QueueRepository for service tests. afterGet,
// when set, runs after each GetByID and lets a test interleave a mutation
// between a service-level read and the repository write that follows it.
type fakeQueueRepo struct {
	mu       sync.Mutex
	seq      int64
	queues   map[int64]*entity.Queue
	afterGet func(id int64)
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{queues: make(map[int64]*entity.Queue)}
}

func (f *fakeQueueRepo) Create(_ context.Context, queue *entity.Queue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	queue.ID = f.seq
	queue.IsActive = true
	cp := *queue
	f.queues[queue.ID] = &cp
	return nil
}

func (f *fakeQueueRepo) GetByID(_ context.Context, id int64) (*entity.Queue, error) {
	f.mu.Lock()
	queue, ok := f.queues[id]
	if !ok {
		f.mu.Unlock()
		return nil, entity.ErrQueueNotFound
	}
	cp := *queue
	f.mu.Unlock()

	if f.afterGet != nil {
		f.afterGet(id)
	}
	return &cp, nil
}

func (f *fakeQueueRepo) GetByBusiness(_ context.Context, businessID int64) ([]*entity.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*entity.Queue
	for _, queue := range f.queues {
		if queue.BusinessID == businessID && queue.IsActive {
			cp := *queue
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeQueueRepo) Update(_ context.Context, queue *entity.Queue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queues[queue.ID]; !ok {
		return entity.ErrQueueNotFound
	}
	cp := *queue
	f.queues[queue.ID] = &cp
	return nil
}

func (f *fakeQueueRepo) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue, ok := f.queues[id]
	if !ok || !queue.IsActive {
		return entity.ErrQueueNotFound
	}
	queue.IsActive = false
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository. It mirrors the postgres
// implementation's semantics: dense position assignment on insert, the queue
// re-validation and single-active-ticket checks inside the insert's critical
// section, and renumbering inside the same critical section as the finishing
// write.
type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int64
	queues  *fakeQueueRepo
	tickets map[string]*entity.Ticket
}

func newFakeTicketRepo(queues *fakeQueueRepo) *fakeTicketRepo {
	return &fakeTicketRepo{queues: queues, tickets: make(map[string]*entity.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *entity.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queues.mu.Lock()
	queue, ok := f.queues.queues[ticket.QueueID]
	active := ok && queue.IsActive
	f.queues.mu.Unlock()
	if !ok {
		return entity.ErrQueueNotFound
	}
	if !active {
		return entity.ErrQueueInactive
	}

	for _, t := range f.tickets {
		if t.UserID == ticket.UserID && t.IsActive() {
			return entity.ErrAlreadyQueued
		}
	}

	count := 0
	for _, t := range f.tickets {
		if t.QueueID == ticket.QueueID && t.IsActive() {
			count++
		}
	}

	f.seq++
	ticket.ID = f.seq
	ticket.Position = count + 1
	cp := *ticket
	f.tickets[ticket.TicketID] = &cp
	return nil
}

func (f *fakeTicketRepo) GetByTicketID(_ context.Context, ticketID string) (*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, entity.ErrTicketNotFound
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTicketRepo) GetActiveByUser(_ context.Context, userID int64) (*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.UserID == userID && t.IsActive() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTicketRepo) GetHistoryByUser(_ context.Context, userID int64, limit int) ([]*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*entity.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID && !t.IsActive() {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LeaveTime.Time.After(result[j].LeaveTime.Time)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeTicketRepo) ListActiveByQueue(_ context.Context, queueID int64) ([]*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listActiveLocked(queueID), nil
}

func (f *fakeTicketRepo) listActiveLocked(queueID int64) []*entity.Ticket {
	var result []*entity.Ticket
	for _, t := range f.tickets {
		if t.QueueID == queueID && t.IsActive() {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result
}

func (f *fakeTicketRepo) CountActive(_ context.Context, queueID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listActiveLocked(queueID)), nil
}

func (f *fakeTicketRepo) Finish(_ context.Context, ticketID string, status entity.TicketStatus) (*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok || !ticket.IsActive() {
		return nil, entity.ErrTicketNotFound
	}
	return f.finishLocked(ticket, status), nil
}

func (f *fakeTicketRepo) FinishFirst(_ context.Context, queueID int64, status entity.TicketStatus) (*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first *entity.Ticket
	for _, t := range f.tickets {
		if t.QueueID == queueID && t.IsActive() && (first == nil || t.Position < first.Position) {
			first = t
		}
	}
	if first == nil {
		return nil, entity.ErrQueueEmpty
	}
	return f.finishLocked(first, status), nil
}

func (f *fakeTicketRepo) finishLocked(ticket *entity.Ticket, status entity.TicketStatus) *entity.Ticket {
	now := time.Now()
	ticket.Status = status
	ticket.LeaveTime = sql.NullTime{Time: now, Valid: true}
	ticket.WaitTime = sql.NullInt64{Int64: int64(now.Sub(ticket.JoinTime).Minutes()), Valid: true}

	for _, t := range f.tickets {
		if t.QueueID == ticket.QueueID && t.IsActive() && t.Position > ticket.Position {
			t.Position--
		}
	}

	cp := *ticket
	return &cp
}

func (f *fakeTicketRepo) PurgeFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, t := range f.tickets {
		if !t.IsActive() && t.LeaveTime.Valid && t.LeaveTime.Time.Before(cutoff) {
			delete(f.tickets, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeTicketRepo) UpdateAlertPrefs(_ context.Context, ticketID string, enabled bool, threshold int,
	channels entity.AlertChannels, email, telegramID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok || !ticket.IsActive() {
		return entity.ErrTicketNotFound
	}
	ticket.AlertsEnabled = enabled
	ticket.AlertThreshold = threshold
	ticket.AlertChannels = channels
	ticket.AlertEmail = email
	ticket.AlertTelegramID = telegramID
	return nil
}

func (f *fakeTicketRepo) ListAlertCandidates(_ context.Context) ([]*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*entity.Ticket
	for _, t := range f.tickets {
		if t.IsActive() && t.AlertsEnabled && !t.AlertsSent && t.Position <= t.AlertThreshold {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) MarkAlertSent(_ context.Context, ticketID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok || !ticket.IsActive() || ticket.AlertsSent {
		return false, nil
	}
	ticket.AlertsSent = true
	return true, nil
}

func newTestQueue(t *testing.T, queueRepo *fakeQueueRepo, avgServiceTime int) *entity.Queue {
	t.Helper()
	queue := &entity.Queue{
		BusinessID:     1,
		Name:           "front desk",
		AvgServiceTime: avgServiceTime,
	}
	require.NoError(t, queueRepo.Create(context.Background(), queue))
	return queue
}

func TestJoinAssignsDensePositions(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	for i := 1; i <= 4; i++ {
		ticket, err := svc.Join(ctx, queue.ID, int64(100+i))
		require.NoError(t, err)
		assert.Equal(t, i, ticket.Position)
		assert.Equal(t, (i-1)*5, ticket.ETA)
		assert.Equal(t, entity.TicketStatusActive, ticket.Status)
		assert.NotEmpty(t, ticket.TicketID)
	}
}

func TestJoinRejectsSecondActiveTicket(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	first := newTestQueue(t, queueRepo, 5)
	second := newTestQueue(t, queueRepo, 5)

	_, err := svc.Join(ctx, first.ID, 101)
	require.NoError(t, err)

	// Same queue
	_, err = svc.Join(ctx, first.ID, 101)
	assert.ErrorIs(t, err, entity.ErrAlreadyQueued)

	// Different queue: one active ticket per user across all queues
	_, err = svc.Join(ctx, second.ID, 101)
	assert.ErrorIs(t, err, entity.ErrAlreadyQueued)
}

// Concurrent joins by one user into different queues take different per-queue
// locks, so only the storage-level check can serialize them. Exactly one may
// win.
func TestConcurrentJoinsAcrossQueues(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		queueRepo := newFakeQueueRepo()
		ticketRepo := newFakeTicketRepo(queueRepo)
		svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

		first := newTestQueue(t, queueRepo, 5)
		second := newTestQueue(t, queueRepo, 5)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for _, queueID := range []int64{first.ID, second.ID} {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := svc.Join(ctx, id, 101)
				errs <- err
			}(queueID)
		}
		wg.Wait()
		close(errs)

		var joined, rejected int
		for err := range errs {
			if err == nil {
				joined++
			} else {
				assert.ErrorIs(t, err, entity.ErrAlreadyQueued)
				rejected++
			}
		}
		assert.Equal(t, 1, joined)
		assert.Equal(t, 1, rejected)

		active, err := ticketRepo.GetActiveByUser(ctx, 101)
		require.NoError(t, err)
		require.NotNil(t, active)
	}
}

func TestJoinInactiveQueue(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)
	require.NoError(t, queueRepo.Deactivate(ctx, queue.ID))

	_, err := svc.Join(ctx, queue.ID, 101)
	assert.ErrorIs(t, err, entity.ErrQueueInactive)

	_, err = svc.Join(ctx, queue.ID+100, 101)
	assert.ErrorIs(t, err, entity.ErrQueueNotFound)
}

// A deactivation landing between Join's queue read and the ticket insert must
// not admit a new ticket: the insert re-validates the queue.
func TestJoinRejectsDeactivationRace(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	queueRepo.afterGet = func(id int64) {
		queueRepo.mu.Lock()
		queueRepo.queues[id].IsActive = false
		queueRepo.mu.Unlock()
	}

	_, err := svc.Join(ctx, queue.ID, 101)
	assert.ErrorIs(t, err, entity.ErrQueueInactive)

	tickets, err := ticketRepo.ListActiveByQueue(ctx, queue.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestServeNextRenumbersQueue(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	var ticketIDs []string
	for i := 1; i <= 3; i++ {
		ticket, err := svc.Join(ctx, queue.ID, int64(100+i))
		require.NoError(t, err)
		ticketIDs = append(ticketIDs, ticket.TicketID)
	}

	served, err := svc.ServeNext(ctx, queue.ID)
	require.NoError(t, err)
	assert.Equal(t, ticketIDs[0], served.TicketID)
	assert.Equal(t, entity.TicketStatusCompleted, served.Status)
	assert.True(t, served.LeaveTime.Valid)
	assert.True(t, served.WaitTime.Valid)

	remaining, err := svc.ListQueueTickets(ctx, queue.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, remaining[0].Position)
	assert.Equal(t, ticketIDs[1], remaining[0].TicketID)
	assert.Equal(t, 2, remaining[1].Position)
	assert.Equal(t, ticketIDs[2], remaining[1].TicketID)
}

func TestServeNextEmptyQueue(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	_, err := svc.ServeNext(ctx, queue.ID)
	assert.ErrorIs(t, err, entity.ErrQueueEmpty)
}

func TestCancelRenumbersBehindTheGap(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	var ticketIDs []string
	for i := 1; i <= 4; i++ {
		ticket, err := svc.Join(ctx, queue.ID, int64(100+i))
		require.NoError(t, err)
		ticketIDs = append(ticketIDs, ticket.TicketID)
	}

	// Cancel position 2: positions 3 and 4 shift down, position 1 unchanged.
	require.NoError(t, svc.Cancel(ctx, ticketIDs[1], 102))

	remaining, err := svc.ListQueueTickets(ctx, queue.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, []string{ticketIDs[0], ticketIDs[2], ticketIDs[3]},
		[]string{remaining[0].TicketID, remaining[1].TicketID, remaining[2].TicketID})
	for i, ticket := range remaining {
		assert.Equal(t, i+1, ticket.Position)
	}

	// The cancelled ticket is terminal and cannot be cancelled again.
	err = svc.Cancel(ctx, ticketIDs[1], 102)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)
}

func TestCancelForbiddenAtFront(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	front, err := svc.Join(ctx, queue.ID, 101)
	require.NoError(t, err)

	err = svc.Cancel(ctx, front.TicketID, 101)
	assert.ErrorIs(t, err, entity.ErrCannotCancelWhenNext)
}

func TestCancelOwnershipCheck(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	_, err := svc.Join(ctx, queue.ID, 101)
	require.NoError(t, err)
	ticket, err := svc.Join(ctx, queue.ID, 102)
	require.NoError(t, err)

	err = svc.Cancel(ctx, ticket.TicketID, 999)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = svc.Get(ctx, ticket.TicketID, 999)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestWaitTimeWholeMinutes(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	ticket, err := svc.Join(ctx, queue.ID, 101)
	require.NoError(t, err)

	// Backdate the join so the wait is 2.5 minutes; it truncates to 2.
	ticketRepo.mu.Lock()
	ticketRepo.tickets[ticket.TicketID].JoinTime = time.Now().Add(-150 * time.Second)
	ticketRepo.mu.Unlock()

	served, err := svc.ServeNext(ctx, queue.ID)
	require.NoError(t, err)
	require.True(t, served.WaitTime.Valid)
	assert.Equal(t, int64(2), served.WaitTime.Int64)
}

func TestGetActiveAndHistory(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 4)

	_, err := svc.GetActiveForUser(ctx, 101)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)

	_, err = svc.Join(ctx, queue.ID, 101)
	require.NoError(t, err)
	ticket, err := svc.Join(ctx, queue.ID, 102)
	require.NoError(t, err)

	active, err := svc.GetActiveForUser(ctx, 102)
	require.NoError(t, err)
	assert.Equal(t, ticket.TicketID, active.TicketID)
	assert.Equal(t, 4, active.ETA)

	_, err = svc.ServeNext(ctx, queue.ID)
	require.NoError(t, err)
	_, err = svc.ServeNext(ctx, queue.ID)
	require.NoError(t, err)

	history, err := svc.GetHistoryForUser(ctx, 102, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.TicketStatusCompleted, history[0].Status)

	_, err = svc.GetActiveForUser(ctx, 102)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)
}

func TestUpdateAlertPrefsValidation(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)
	ticket, err := svc.Join(ctx, queue.ID, 101)
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *UpdateAlertPrefsRequest
		wantErr error
	}{
		{
			name: "enable without channels",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 3,
			},
			wantErr: entity.ErrInvalidInput,
		},
		{
			name: "disable without channels",
			req:  &UpdateAlertPrefsRequest{Enabled: false},
		},
		{
			name: "unknown channel",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 3, Channels: []string{"pigeon"},
			},
			wantErr: entity.ErrInvalidInput,
		},
		{
			name: "email channel without address",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 3, Channels: []string{"email"},
			},
			wantErr: entity.ErrInvalidInput,
		},
		{
			name: "telegram channel without chat id",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 3, Channels: []string{"telegram"},
			},
			wantErr: entity.ErrInvalidInput,
		},
		{
			name: "negative threshold",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: -1, Channels: []string{"browser"},
			},
			wantErr: entity.ErrInvalidInput,
		},
		{
			name: "valid browser subscription",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 2, Channels: []string{"browser"},
			},
		},
		{
			name: "valid email subscription",
			req: &UpdateAlertPrefsRequest{
				Enabled: true, Threshold: 2, Channels: []string{"email", "browser"},
				Email: "user@example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateAlertPrefs(ctx, ticket.TicketID, 101, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err = svc.UpdateAlertPrefs(ctx, ticket.TicketID, 999, &UpdateAlertPrefsRequest{
		Enabled: true, Threshold: 2, Channels: []string{"browser"},
	})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

// Positions must stay dense under concurrent joins and removals.
func TestConcurrentMutationsKeepPositionsDense(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	svc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue := newTestQueue(t, queueRepo, 5)

	const joiners = 20
	ticketCh := make(chan string, joiners)

	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			ticket, err := svc.Join(ctx, queue.ID, userID)
			if err == nil {
				ticketCh <- ticket.TicketID
			}
		}(int64(1000 + i))
	}
	wg.Wait()
	close(ticketCh)
	require.Len(t, ticketCh, joiners)

	// Interleave serves and cancels.
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ServeNext(ctx, queue.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	remaining, err := svc.ListQueueTickets(ctx, queue.ID)
	require.NoError(t, err)
	require.Len(t, remaining, joiners-3)

	seen := make(map[int]bool)
	for _, ticket := range remaining {
		assert.False(t, seen[ticket.Position], "duplicate position %d", ticket.Position)
		seen[ticket.Position] = true
		assert.GreaterOrEqual(t, ticket.Position, 1)
		assert.LessOrEqual(t, ticket.Position, len(remaining))
	}
}

func TestQueueServiceCreateAndSize(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	queueSvc := NewQueueService(queueRepo, ticketRepo, nil, 5)
	ticketSvc := NewTicketService(ticketRepo, queueRepo, nil, 3)

	queue, err := queueSvc.CreateQueue(ctx, &CreateQueueRequest{BusinessID: 7, Name: "pickup"})
	require.NoError(t, err)
	assert.Equal(t, 5, queue.AvgServiceTime, "defaults when omitted")

	_, err = queueSvc.CreateQueue(ctx, &CreateQueueRequest{BusinessID: 7, Name: "bad", AvgServiceTime: -2})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	for i := 0; i < 3; i++ {
		_, err := ticketSvc.Join(ctx, queue.ID, int64(200+i))
		require.NoError(t, err)
	}

	withSize, err := queueSvc.GetQueue(ctx, queue.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, withSize.Size)

	queues, err := queueSvc.GetBusinessQueues(ctx, 7)
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, 3, queues[0].Size)
}

func TestQueueServiceUpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	queueSvc := NewQueueService(queueRepo, ticketRepo, nil, 5)

	queue, err := queueSvc.CreateQueue(ctx, &CreateQueueRequest{BusinessID: 7, Name: "pickup", AvgServiceTime: 10})
	require.NoError(t, err)

	name := "walk-in"
	avg := 8
	updated, err := queueSvc.UpdateQueue(ctx, queue.ID, &UpdateQueueRequest{Name: &name, AvgServiceTime: &avg})
	require.NoError(t, err)
	assert.Equal(t, "walk-in", updated.Name)
	assert.Equal(t, 8, updated.AvgServiceTime)

	bad := 0
	_, err = queueSvc.UpdateQueue(ctx, queue.ID, &UpdateQueueRequest{AvgServiceTime: &bad})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	require.NoError(t, queueSvc.DeactivateQueue(ctx, queue.ID))
	err = queueSvc.DeactivateQueue(ctx, queue.ID)
	assert.ErrorIs(t, err, entity.ErrQueueNotFound)
}
