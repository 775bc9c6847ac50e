package version

import "testing"

func TestGetUsesVersionVariable(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "v9.9.9"
	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("expected v9.9.9, got %q", got)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "v1", Commit: "abc1234"}, "v1-abc1234"},
		{Info{Version: "v1", Commit: "abc1234", Dirty: true}, "v1-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
