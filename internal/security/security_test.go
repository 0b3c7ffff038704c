package security

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdentityCapabilities(t *testing.T) {
	centre := int64(4)

	tests := []struct {
		name       string
		identity   Identity
		capability Capability
		want       bool
	}{
		{"parent cannot report on centre", Identity{Role: RoleParent}, CapReportCentre, false},
		{"staff reports on centre", Identity{Role: RoleStaff, CentreID: &centre}, CapReportCentre, true},
		{"staff cannot edit lexicon", Identity{Role: RoleStaff}, CapLexiconEdit, false},
		{"admin edits lexicon", Identity{Role: RoleAdmin}, CapLexiconEdit, true},
		{"admin reports on any centre", Identity{Role: RoleAdmin}, CapReportAnyCentre, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.Can(tt.capability); got != tt.want {
				t.Errorf("Can(%s) = %v, want %v", tt.capability, got, tt.want)
			}
		})
	}
}

func TestCanReportOnCentre(t *testing.T) {
	own := int64(4)

	staff := Identity{LearnerID: 1, CentreID: &own, Role: RoleStaff}
	if !staff.CanReportOnCentre(4) {
		t.Error("staff should report on own centre")
	}
	if staff.CanReportOnCentre(5) {
		t.Error("staff should not report on another centre")
	}
	if !(Identity{Role: RoleAdmin}).CanReportOnCentre(5) {
		t.Error("admin should report on any centre")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	centre := int64(9)
	token, err := SignToken("s3cret", Identity{LearnerID: 42, CentreID: &centre, Role: RoleStaff}, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}

	id, err := NewTokenVerifier("s3cret").Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.LearnerID != 42 || id.CentreID == nil || *id.CentreID != 9 || id.Role != RoleStaff {
		t.Errorf("Verify() = %+v", id)
	}
}

func TestVerifyRejects(t *testing.T) {
	valid, err := SignToken("s3cret", Identity{LearnerID: 1, Role: RoleParent}, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	expired, err := SignToken("s3cret", Identity{LearnerID: 1}, -time.Minute)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	badRole, err := SignToken("s3cret", Identity{LearnerID: 1, Role: "OWNER"}, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "s3cret", expired},
		{"garbage", "s3cret", "not-a-token"},
		{"unknown role", "s3cret", badRole},
		{"no secret configured", "", valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenVerifier(tt.secret).Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("learner:1") || !rl.Allow("learner:1") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("learner:1") {
		t.Error("third request inside the window should be rejected")
	}
	if !rl.Allow("learner:2") {
		t.Error("other keys have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("learner:1") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(5 * time.Minute)
	rl.sweep()
	rl.mu.Lock()
	remaining := len(rl.visitors)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("sweep left %d visitors, want 0", remaining)
	}
}
