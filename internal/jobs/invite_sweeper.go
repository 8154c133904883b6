package jobs

import (
	"context"
	"log"
	"time"

	"rewardbase/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// Pending invitations expire after two weeks; the sweeper reclaims them.
const inviteTTL = 14 * 24 * time.Hour

// InviteSweeper periodically deletes pending invitations past their TTL.
type InviteSweeper struct {
	scheduler      gocron.Scheduler
	membershipRepo repositories.MembershipRepository
}

func NewInviteSweeper(membershipRepo repositories.MembershipRepository) (*InviteSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &InviteSweeper{
		scheduler:      scheduler,
		membershipRepo: membershipRepo,
	}, nil
}

// Start registers the hourly sweep and starts the scheduler.
func (s *InviteSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	log.Printf("Invite sweeper started, interval 1h, TTL %s", inviteTTL)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *InviteSweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *InviteSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-inviteTTL)
	deleted, err := s.membershipRepo.DeletePendingBefore(ctx, cutoff)
	if err != nil {
		log.Printf("WARN: invite sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Invite sweep removed %d expired invitations", deleted)
	}
}
