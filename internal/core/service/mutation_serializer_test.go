package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
)

func newTestSerializer() (*MutationSerializer, *cache.Store) {
	store := cache.New(zerolog.Nop())
	return NewMutationSerializer(store, zerolog.Nop()), store
}

func TestSerializer_SecondSubmitRejectedWhileFirstInFlight(t *testing.T) {
	serializer, _ := newTestSerializer()

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		}, Invalidation{})
	}()

	<-entered

	err := serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		t.Error("second mutation must not run")
		return nil
	}, Invalidation{})
	if !errors.Is(err, domain.ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first mutation failed: %v", err)
	}
}

func TestSerializer_DifferentEntitiesDoNotConflict(t *testing.T) {
	serializer, _ := newTestSerializer()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		}, Invalidation{})
	}()

	<-entered

	if err := serializer.Submit(context.Background(), "task", "task_2", func(ctx context.Context) error {
		return nil
	}, Invalidation{}); err != nil {
		t.Fatalf("independent entity should not conflict: %v", err)
	}
	// Same id under a different kind is a different entity.
	if err := serializer.Submit(context.Background(), "settlement", "task_1", func(ctx context.Context) error {
		return nil
	}, Invalidation{}); err != nil {
		t.Fatalf("different kind should not conflict: %v", err)
	}

	close(release)
	<-done
}

func TestSerializer_MarkerClearedAfterSettlement(t *testing.T) {
	serializer, _ := newTestSerializer()

	if err := serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		return nil
	}, Invalidation{}); err != nil {
		t.Fatalf("success case: %v", err)
	}
	if serializer.Pending("task", "task_1") {
		t.Error("marker must clear after success")
	}

	wantErr := errors.New("backend rejected")
	err := serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		return wantErr
	}, Invalidation{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if serializer.Pending("task", "task_1") {
		t.Error("marker must clear after failure too")
	}

	// A follow-up submit must be accepted.
	if err := serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		return nil
	}, Invalidation{}); err != nil {
		t.Fatalf("follow-up submit: %v", err)
	}
}

func TestSerializer_InvalidatesOnlyOnSuccess(t *testing.T) {
	serializer, store := newTestSerializer()
	key := cache.NewKey(cache.KindTasks, "page1")

	var fetches int
	var mu sync.Mutex
	get := func() {
		_, err := store.Get(context.Background(), key, func(ctx context.Context) (any, error) {
			mu.Lock()
			fetches++
			mu.Unlock()
			return "tasks", nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	get()

	// Failed mutation: cache untouched.
	_ = serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		return errors.New("rejected")
	}, Invalidation{Keys: []cache.Key{key}})
	get()
	if fetches != 1 {
		t.Fatalf("failed mutation must not invalidate, fetches=%d", fetches)
	}

	// Successful mutation: key goes stale.
	if err := serializer.Submit(context.Background(), "task", "task_1", func(ctx context.Context) error {
		return nil
	}, Invalidation{Keys: []cache.Key{key}}); err != nil {
		t.Fatal(err)
	}
	get()
	if fetches != 2 {
		t.Fatalf("successful mutation must invalidate, fetches=%d", fetches)
	}
}
