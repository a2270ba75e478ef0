package process

import "testing"

// Only pids that cannot name a live process are used here. Killing a real
// Chrome is covered by the browser renderer integration tests.
func TestKillTree(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1} {
		if err := KillTree(pid); err != nil {
			t.Errorf("KillTree(%d) error = %v, want nil for a pid that never started", pid, err)
		}
	}

	if err := KillTree(999999999); err == nil {
		t.Error("KillTree(999999999) error = nil, want no such process")
	}
}
