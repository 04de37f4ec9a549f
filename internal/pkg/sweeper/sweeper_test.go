package sweeper

import (
	"testing"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
)

type fakeSubRepo struct {
	subs    map[uint]*models.UserSubscription
	updates int
}

func newFakeSubRepo(subs ...*models.UserSubscription) *fakeSubRepo {
	r := &fakeSubRepo{subs: map[uint]*models.UserSubscription{}}
	for _, s := range subs {
		r.subs[s.UserID] = s
	}
	return r
}

func (r *fakeSubRepo) GetByUserID(userID uint) (*models.UserSubscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubRepo) GetOrCreate(userID uint) (*models.UserSubscription, error) {
	if s, ok := r.subs[userID]; ok {
		return s, nil
	}
	s := &models.UserSubscription{UserID: userID}
	r.subs[userID] = s
	return s, nil
}

func (r *fakeSubRepo) Update(sub *models.UserSubscription) error {
	cp := *sub
	r.subs[sub.UserID] = &cp
	r.updates++
	return nil
}

func (r *fakeSubRepo) ListExpiring(before time.Time) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, s := range r.subs {
		if s.Active && !s.AllowedByAdmin && s.EndDate != nil && s.EndDate.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) ListGraceEnded(before time.Time) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, s := range r.subs {
		if s.GracePeriodEnd != nil && s.GracePeriodEnd.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

var sweepNow = time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

func paidSub(userID uint, end time.Time) *models.UserSubscription {
	start := end.Add(-30 * 24 * time.Hour)
	return &models.UserSubscription{
		UserID:    userID,
		Active:    true,
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestSweepOnce_ExpiredEntersGrace(t *testing.T) {
	repo := newFakeSubRepo(paidSub(1, sweepNow.Add(-time.Hour)))
	s := New(repo, time.Minute)

	if err := s.SweepOnce(sweepNow); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}

	sub := repo.subs[1]
	if sub.Active {
		t.Error("expired subscription should no longer be active")
	}
	if sub.GracePeriodEnd == nil {
		t.Fatal("grace period not opened")
	}
	want := sweepNow.Add(models.GracePeriodDays * 24 * time.Hour)
	if !sub.GracePeriodEnd.Equal(want) {
		t.Errorf("grace end = %s, want %s", sub.GracePeriodEnd, want)
	}
}

func TestSweepOnce_StillRunningUntouched(t *testing.T) {
	repo := newFakeSubRepo(paidSub(1, sweepNow.Add(48*time.Hour)))
	s := New(repo, time.Minute)

	if err := s.SweepOnce(sweepNow); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if repo.updates != 0 {
		t.Errorf("running subscription was updated %d times", repo.updates)
	}
	if !repo.subs[1].Active {
		t.Error("running subscription deactivated")
	}
}

func TestSweepOnce_AdminOverrideExempt(t *testing.T) {
	sub := paidSub(1, sweepNow.Add(-time.Hour))
	sub.AllowedByAdmin = true
	repo := newFakeSubRepo(sub)
	s := New(repo, time.Minute)

	if err := s.SweepOnce(sweepNow); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if repo.subs[1].GracePeriodEnd != nil {
		t.Error("admin-allowed subscription should never enter grace")
	}
}

func TestSweepOnce_GraceClosed(t *testing.T) {
	graceEnd := sweepNow.Add(-time.Hour)
	sub := &models.UserSubscription{UserID: 1, GracePeriodEnd: &graceEnd}
	repo := newFakeSubRepo(sub)
	s := New(repo, time.Minute)

	if err := s.SweepOnce(sweepNow); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	got := repo.subs[1]
	if got.Active {
		t.Error("closed grace should leave subscription inactive")
	}
	if got.GracePeriodEnd != nil {
		t.Error("closed grace window should be cleared")
	}
}

func TestSweepOnce_OpenGraceRetained(t *testing.T) {
	graceEnd := sweepNow.Add(24 * time.Hour)
	sub := &models.UserSubscription{UserID: 1, GracePeriodEnd: &graceEnd}
	repo := newFakeSubRepo(sub)
	s := New(repo, time.Minute)

	if err := s.SweepOnce(sweepNow); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if repo.subs[1].GracePeriodEnd == nil {
		t.Error("open grace window must be retained")
	}
}

func TestStartStop(t *testing.T) {
	repo := newFakeSubRepo()
	s := New(repo, 10*time.Millisecond)
	s.Start()
	s.Start() // idempotent
	time.Sleep(35 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent
}
