package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	sess, err := New("https://maps.example.com", "tok-123", "alex", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := st.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Server != sess.Server || got.Token != sess.Token || got.User != sess.User {
		t.Errorf("Get = %+v, want %+v", got, sess)
	}
}

func TestFileStoreMissing(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(absent) = %v, want ErrNotFound", err)
	}
}

func TestFileStoreExpiredSessionRemoved(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	sess := &Session{
		ID:        "old",
		Server:    "https://maps.example.com",
		Token:     "tok",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := st.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrExpired) {
		t.Fatalf("Get(expired) = %v, want ErrExpired", err)
	}
	if _, err := os.Stat(st.sessionPath("old")); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
}

func TestFileStoreZeroExpiryNeverExpires(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	sess, err := New("https://maps.example.com", "tok", "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := st.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := st.Get(ctx, sess.ID); err != nil {
		t.Errorf("Get = %v, want nil for zero-expiry session", err)
	}
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := st.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	live, _ := New("https://a.example.com", "tok", "", DefaultTTL)
	dead := &Session{ID: "dead", Server: "https://b.example.com", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := st.Set(ctx, live); err != nil {
		t.Fatalf("Set live: %v", err)
	}
	if err := st.Set(ctx, dead); err != nil {
		t.Fatalf("Set dead: %v", err)
	}

	if err := st.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := st.Get(ctx, live.ID); err != nil {
		t.Errorf("live session lost in cleanup: %v", err)
	}
	if _, err := st.Get(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dead session still present after cleanup: %v", err)
	}
}

func TestServerID(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"https://maps.example.com", "maps.example.com"},
		{"http://maps.example.com/", "maps.example.com"},
		{"https://maps.example.com:8080", "maps.example.com-8080"},
		{"HTTPS://Maps.Example.COM", "maps.example.com"},
		{"", "default"},
	}
	for _, tt := range tests {
		if got := serverID(tt.server); got != tt.want {
			t.Errorf("serverID(%q) = %q, want %q", tt.server, got, tt.want)
		}
	}
}

func TestCLIStoreKeyedByServer(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	cs := &CLIStore{store: fs}
	ctx := context.Background()

	a, _ := New("https://a.example.com", "tok-a", "", DefaultTTL)
	b, _ := New("https://b.example.com", "tok-b", "", DefaultTTL)
	if err := cs.SaveSession(ctx, a); err != nil {
		t.Fatalf("SaveSession a: %v", err)
	}
	if err := cs.SaveSession(ctx, b); err != nil {
		t.Fatalf("SaveSession b: %v", err)
	}

	got, err := cs.GetSession(ctx, "https://a.example.com")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Token != "tok-a" {
		t.Errorf("token = %q, want tok-a", got.Token)
	}

	if err := cs.DeleteSession(ctx, "https://a.example.com"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := cs.GetSession(ctx, "https://a.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session still present: %v", err)
	}
	if _, err := cs.GetSession(ctx, "https://b.example.com"); err != nil {
		t.Errorf("unrelated session lost: %v", err)
	}
}

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"zero never expires", time.Time{}, false},
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expires}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
