package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeNotify_Constant(t *testing.T) {
	if TaskTypeNotify != "notify:request_decision" {
		t.Errorf("TaskTypeNotify = %q, expected %q", TaskTypeNotify, "notify:request_decision")
	}
}

func TestNotifyTask_Structure(t *testing.T) {
	task := NotifyTask{
		RequestID: 1,
		UserID:    10,
		TeamID:    5,
		Approved:  true,
		Notes:     "welcome aboard",
	}

	if task.RequestID != 1 {
		t.Errorf("RequestID = %d, expected 1", task.RequestID)
	}
	if task.UserID != 10 {
		t.Errorf("UserID = %d, expected 10", task.UserID)
	}
	if task.TeamID != 5 {
		t.Errorf("TeamID = %d, expected 5", task.TeamID)
	}
	if !task.Approved {
		t.Error("Approved should be true")
	}
	if task.Notes != "welcome aboard" {
		t.Errorf("Notes = %q, expected %q", task.Notes, "welcome aboard")
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &NotifyTask{RequestID: 1}

	if err := queue.Enqueue(task); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueInvokesProcessor(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var received *NotifyTask
	done := make(chan struct{})

	queue.SetProcessor(func(ctx context.Context, task *NotifyTask) error {
		mu.Lock()
		received = task
		mu.Unlock()
		close(done)
		return nil
	})

	task := &NotifyTask{RequestID: 7, UserID: 3, TeamID: 2, Approved: false}
	if err := queue.Enqueue(task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if received == nil || received.RequestID != 7 {
		t.Errorf("received = %+v, expected request 7", received)
	}
}
