package gate

import "testing"

func TestLessThan(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.0.0", "2.0.0", true},
		{"2.0.0", "1.0.0", false},
		{"2.4.0", "2.5.0", true},
		{"2.5.0", "2.5.0", false},
		{"2.5.1", "2.5.0", false},
		{"1.10.0", "1.9.0", false},
		{"1.9.0", "1.10.0", true},
		{"2.0.0-beta.1", "2.0.0", true},
		{"2.0.0", "2.0.0-beta.1", false},
		{"2.0.0-alpha", "2.0.0-beta", true},
		{"v1.2.3", "1.2.4", true},
		{"=1.2.3", "1.2.3", false},
		{"1.2.3+build.7", "1.2.3", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"<"+tt.b, func(t *testing.T) {
			got, err := LessThan(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if got != tt.want {
				t.Errorf("LessThan(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLessThanIsAStrictOrder(t *testing.T) {
	versions := []string{"0.0.1", "0.1.0", "1.0.0-rc.1", "1.0.0", "1.0.1", "1.2.0", "2.0.0"}

	for i, a := range versions {
		for j, b := range versions {
			ab, err := LessThan(a, b)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			ba, err := LessThan(b, a)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ab != (i < j) {
				t.Errorf("LessThan(%q, %q) = %v, want %v", a, b, ab, i < j)
			}
			if ab && ba {
				t.Errorf("%q and %q are each less than the other", a, b)
			}
		}
	}
}

func TestLessThanInvalidVersion(t *testing.T) {
	for _, bad := range []string{"", "1", "1.2", "one.two.three", "1.2.3.4", "latest", "vv1.2.3", "==1.2.3", "v=1.2.3", "=v1.2.3"} {
		t.Run(bad, func(t *testing.T) {
			if _, err := LessThan(bad, "1.0.0"); !IsWrappingError(err, ErrInvalidVersionFormat) {
				t.Errorf("Expected ErrInvalidVersionFormat for left side %q, got: %v", bad, err)
			}
			if _, err := LessThan("1.0.0", bad); !IsWrappingError(err, ErrInvalidVersionFormat) {
				t.Errorf("Expected ErrInvalidVersionFormat for right side %q, got: %v", bad, err)
			}
		})
	}
}

func TestParseVersionSinglePrefix(t *testing.T) {
	for _, in := range []string{"1.2.3", "v1.2.3", "=1.2.3", " v1.2.3 "} {
		v, err := ParseVersion(in)
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed: %v", in, err)
		}
		if v.String() != "1.2.3" {
			t.Errorf("ParseVersion(%q) = %s, want 1.2.3", in, v)
		}
	}
}
