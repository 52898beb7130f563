package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/pkg/jobs"
)

type memoryNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (s *memoryNotificationStore) Create(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *memoryNotificationStore) List(_ context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memoryNotificationStore) MarkRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return context.Canceled
}

func (s *memoryNotificationStore) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
		}
	}
	return nil
}

func (s *memoryNotificationStore) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *memoryNotificationStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

func TestNotifyDeliversThroughTheQueue(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store, jobs.QueueConfig{Workers: 1, BufferSize: 8}, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify("usr-1", "Request received", "Your request was acknowledged.", "/requests/req-1")

	require.Eventually(t, func() bool {
		return store.len() == 1
	}, time.Second, 10*time.Millisecond)

	actor := &models.Actor{UserID: "usr-1", Role: models.RoleStudent}
	inbox, err := svc.List(context.Background(), actor, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Request received", inbox[0].Title)
	assert.False(t, inbox[0].Read)

	count, err := svc.UnreadCount(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifyBeforeStartIsDroppedSilently(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store, jobs.QueueConfig{Workers: 1, BufferSize: 1}, zap.NewNop())

	// must not panic or block
	svc.Notify("usr-1", "Lost", "never delivered", "")
	assert.Equal(t, 0, store.len())
}

func TestNotifyIgnoresEmptyRecipient(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store, jobs.QueueConfig{Workers: 1, BufferSize: 8}, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify("", "Nobody", "no recipient", "")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, store.len())
}

func TestMarkAllReadClearsTheBadge(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store, jobs.QueueConfig{Workers: 1, BufferSize: 8}, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify("usr-1", "One", "", "")
	svc.Notify("usr-1", "Two", "", "")
	require.Eventually(t, func() bool { return store.len() == 2 }, time.Second, 10*time.Millisecond)

	actor := &models.Actor{UserID: "usr-1", Role: models.RoleStudent}
	require.NoError(t, svc.MarkAllRead(context.Background(), actor))

	count, err := svc.UnreadCount(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
