package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	for _, perm := range []string{"quiz:view", "attempt:start", "attempt:submit", "attempt:view-own"} {
		if !c.Has("student", perm) {
			t.Fatalf("student should have %s", perm)
		}
	}
	for _, perm := range []string{"quiz:create", "quiz:delete", "results:view-all", "attempt:view-all"} {
		if c.Has("student", perm) {
			t.Fatalf("student should not have %s", perm)
		}
		if !c.Has("admin", perm) {
			t.Fatalf("admin wildcard should cover %s", perm)
		}
	}
	if c.Has("", "quiz:view") || c.Has("ghost", "quiz:view") {
		t.Fatalf("unknown roles must have no permissions")
	}
}

func TestAnyAndPrefixMatch(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"attempt:*"}})
	if !c.Has("grader", "attempt:view-all") || c.Has("grader", "quiz:view") {
		t.Fatalf("prefix pattern matching broken")
	}
	if !c.Any("grader", "quiz:view", "attempt:submit") {
		t.Fatalf("Any should pass when one permission matches")
	}
	if c.Any("grader", "quiz:view", "quiz:create") {
		t.Fatalf("Any should fail when none match")
	}
}
