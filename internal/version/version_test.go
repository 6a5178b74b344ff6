package version

import "testing"

func TestInfoIncludesBuildMetadata(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	if IsRelease() {
		t.Fatalf("default build reported as a release")
	}

	Version, Commit, Date = "v0.3.0", "abc1234", "2025-11-02"
	if got := Info(); got != "v0.3.0 (commit abc1234, built 2025-11-02)" {
		t.Fatalf("Info() = %q", got)
	}
	if !IsRelease() {
		t.Fatalf("stamped build not reported as a release")
	}
}
