package tools

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"chatmind/internal/capability"
)

func TestCity(t *testing.T) {
	tests := []struct {
		configured string
		want       string
	}{
		{configured: "", want: "深圳"},
		{configured: "Lisbon", want: "Lisbon"},
	}
	for _, tt := range tests {
		got, err := NewCity(tt.configured).Execute(context.Background(), "{}")
		if err != nil {
			t.Fatalf("Execute() unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("NewCity(%q).Execute() = %q, want %q", tt.configured, got, tt.want)
		}
	}
}

func TestRegisterAllWithoutBraveKey(t *testing.T) {
	r := capability.NewRegistry()
	if err := RegisterAll(r, "", ""); err != nil {
		t.Fatalf("RegisterAll() unexpected error: %v", err)
	}

	var got []string
	for _, d := range r.Descriptors() {
		got = append(got, d.Name)
		if d.Kind != capability.Fixed {
			t.Errorf("%s kind = %v, want fixed", d.Name, d.Kind)
		}
	}
	if want := []string{"directAnswer", "getCity"}; !slices.Equal(got, want) {
		t.Errorf("registered = %v, want %v", got, want)
	}

	if err := RegisterAll(r, "", ""); !errors.Is(err, capability.ErrDuplicate) {
		t.Errorf("second RegisterAll() error = %v, want ErrDuplicate", err)
	}
}

func TestParseSearchArgs(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantQuery string
		wantCount int
		wantErr   error
	}{
		{name: "defaults count", input: `{"query":"go","count":0}`, wantQuery: "go", wantCount: 5},
		{name: "caps count", input: `{"query":"go","count":99}`, wantQuery: "go", wantCount: 20},
		{name: "trims query", input: `{"query":"  go  ","count":3}`, wantQuery: "go", wantCount: 3},
		{name: "empty query", input: `{"query":" ","count":3}`, wantErr: errEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSearchArgs(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("parseSearchArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSearchArgs() unexpected error: %v", err)
			}
			if got.Query != tt.wantQuery || got.Count != tt.wantCount {
				t.Errorf("parseSearchArgs() = %+v", got)
			}
		})
	}

	if _, err := parseSearchArgs("not json"); err == nil {
		t.Error("parseSearchArgs(invalid) expected error")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxOutputBytes+10)
	got := truncate([]byte(long))
	if !strings.HasSuffix(got, "(truncated)") || len(got) <= maxOutputBytes {
		t.Errorf("truncate() did not mark truncation: len=%d", len(got))
	}
	if got := truncate([]byte("short")); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
}
