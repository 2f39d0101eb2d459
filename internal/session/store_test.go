package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb), mr
}

func TestUserIDLifecycle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	sid := NewID()
	if err := s.Create(ctx, sid, "user-1", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	uid, ok, err := s.UserID(ctx, sid)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if uid != "user-1" {
		t.Fatalf("unexpected user id: %q", uid)
	}

	// expiry reverts the session to anonymous
	mr.FastForward(2 * time.Hour)
	_, ok, err = s.UserID(ctx, sid)
	if err != nil {
		t.Fatalf("lookup after expiry: %v", err)
	}
	if ok {
		t.Fatalf("expected session to be gone after TTL")
	}
}

func TestDeleteRemovesSessionAndFlashes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sid := NewID()
	if err := s.Create(ctx, sid, "user-1", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.AddFlash(ctx, sid, "success", "Welcome back!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}
	if err := s.Delete(ctx, sid); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok, _ := s.UserID(ctx, sid); ok {
		t.Fatalf("session survived delete")
	}
	flashes, err := s.PopFlashes(ctx, sid)
	if err != nil {
		t.Fatalf("pop flashes: %v", err)
	}
	if len(flashes) != 0 {
		t.Fatalf("flashes survived delete: %v", flashes)
	}
}

func TestReturnToIsConsumedExactlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sid := NewID()
	if err := s.Create(ctx, sid, "", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetReturnTo(ctx, sid, "/campgrounds/abc/edit"); err != nil {
		t.Fatalf("set return-to: %v", err)
	}

	got, err := s.ConsumeReturnTo(ctx, sid)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got != "/campgrounds/abc/edit" {
		t.Fatalf("unexpected return-to: %q", got)
	}

	// second consumption must find nothing
	got, err = s.ConsumeReturnTo(ctx, sid)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if got != "" {
		t.Fatalf("return-to was not cleared: %q", got)
	}
}

func TestFlashesPopInOrderAndOnlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sid := NewID()
	if err := s.Create(ctx, sid, "user-1", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.AddFlash(ctx, sid, "error", "You must be signed in first!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}
	if err := s.AddFlash(ctx, sid, "success", "Welcome back!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}

	flashes, err := s.PopFlashes(ctx, sid)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if len(flashes) != 2 {
		t.Fatalf("expected 2 flashes, got %d", len(flashes))
	}
	if flashes[0].Kind != "error" || flashes[1].Kind != "success" {
		t.Fatalf("flashes out of order: %+v", flashes)
	}

	again, err := s.PopFlashes(ctx, sid)
	if err != nil {
		t.Fatalf("second pop: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("flashes popped twice: %+v", again)
	}
}
