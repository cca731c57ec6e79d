package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/postgres"
)

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		want    options
		wantErr string
	}{
		{
			name: "defaults with env dsn",
			env:  map[string]string{envPostgresDSN: " postgres://env "},
			want: options{direction: "up", dsn: "postgres://env"},
		},
		{
			name: "flag dsn wins",
			args: []string{"-direction", "DOWN", "-steps", "2", "-dsn", "postgres://flag"},
			env:  map[string]string{envPostgresDSN: "postgres://env"},
			want: options{direction: "down", steps: 2, dsn: "postgres://flag"},
		},
		{
			name: "status",
			args: []string{"-direction=status", "-dsn=postgres://flag"},
			want: options{direction: "status", dsn: "postgres://flag"},
		},
		{name: "missing dsn", wantErr: "is required"},
		{name: "unsupported direction", args: []string{"-direction", "sideways", "-dsn", "x"}, wantErr: "unsupported direction"},
		{name: "negative steps", args: []string{"-steps", "-1", "-dsn", "x"}, wantErr: "non-negative"},
		{name: "unknown flag", args: []string{"-force"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptions(tt.args, envLookup(tt.env))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMigrate_Integration(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("KOMS_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("KOMS_POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := migrate(ctx, store, options{direction: "up", dsn: dsn}, &out); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if !strings.Contains(out.String(), "migrate up ok") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := migrate(ctx, store, options{direction: "status", dsn: dsn}, &out); err != nil {
		t.Fatalf("migrate status: %v", err)
	}
	if !strings.Contains(out.String(), "version=2 applied=2") {
		t.Fatalf("unexpected status %q", out.String())
	}
}
