package sync

import "testing"

func TestUserLocks_SameUserExcluded(t *testing.T) {
	locks := newUserLocks()

	if !locks.tryAcquire("user-1") {
		t.Fatal("first acquire should succeed")
	}
	if locks.tryAcquire("user-1") {
		t.Fatal("second acquire for the same user should fail")
	}

	locks.release("user-1")
	if !locks.tryAcquire("user-1") {
		t.Fatal("acquire after release should succeed")
	}
}

func TestUserLocks_DifferentUsersIndependent(t *testing.T) {
	locks := newUserLocks()

	if !locks.tryAcquire("user-1") {
		t.Fatal("acquire user-1 should succeed")
	}
	if !locks.tryAcquire("user-2") {
		t.Fatal("user-2 must not be blocked by user-1's lock")
	}
}
