package kvstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisKVGetSetDelete(t *testing.T) {
	redis := miniredis.RunT(t)
	kv := NewRedisKV(redis.Addr(), "")

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("absent key should be (ok=false, err=nil), got ok=%v err=%v", ok, err)
	}
	if err := kv.Set("user:1", `{"id":"1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := kv.Get("user:1")
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if val != `{"id":"1"}` {
		t.Fatalf("unexpected value %q", val)
	}
	if err := kv.Delete("user:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("user:1"); ok {
		t.Fatalf("key should be gone after delete")
	}
	if err := kv.Delete("user:1"); err != nil {
		t.Fatalf("repeated delete should be a no-op, got %v", err)
	}
}

func TestRedisKVSets(t *testing.T) {
	redis := miniredis.RunT(t)
	kv := NewRedisKV(redis.Addr(), "")

	members, err := kv.SetMembers("study_plans:u1")
	if err != nil {
		t.Fatalf("members of absent set: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("absent set should be empty, got %v", members)
	}
	if err := kv.AddToSet("study_plans:u1", "p1"); err != nil {
		t.Fatalf("add to set: %v", err)
	}
	if err := kv.AddToSet("study_plans:u1", "p2"); err != nil {
		t.Fatalf("add to set: %v", err)
	}
	members, err = kv.SetMembers("study_plans:u1")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}
	if err := kv.RemoveFromSet("study_plans:u1", "p1"); err != nil {
		t.Fatalf("remove from set: %v", err)
	}
	members, _ = kv.SetMembers("study_plans:u1")
	if len(members) != 1 || members[0] != "p2" {
		t.Fatalf("expected [p2], got %v", members)
	}
}

func TestRedisKVUnreachableReportsError(t *testing.T) {
	redis := miniredis.RunT(t)
	kv := NewRedisKV(redis.Addr(), "")
	redis.Close()

	if _, _, err := kv.Get("user:1"); err == nil {
		t.Fatalf("unreachable store must surface an error, not an absent value")
	}
	if err := kv.Set("user:1", "x"); err == nil {
		t.Fatalf("unreachable store must surface an error on writes")
	}
}
