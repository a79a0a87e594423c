package service

import (
	"errors"

	"blogpulse/internal/apperr"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"
)

// LikeService toggles the like relation between a user and a target and
// answers pure read queries about it. A toggle is idempotent in pairs:
// calling it twice returns the state to where it started.
type LikeService interface {
	Toggle(userID string, target model.LikeTarget) (*LikeResult, error)
	Count(target model.LikeTarget) (int64, error)
	IsLikedBy(userID string, target model.LikeTarget) (bool, error)
}

// LikeResult reports the state after a toggle
type LikeResult struct {
	Liked bool `json:"liked"`
}

type likeService struct {
	likeRepo repository.LikeRepository
}

func NewLikeService(likeRepo repository.LikeRepository) LikeService {
	return &likeService{likeRepo: likeRepo}
}

// Toggle flips the like state for (user, target). Existing row: delete it,
// report unliked. No row: insert one, report liked. Two concurrent toggles
// for the same pair cannot produce two rows; the losing insert hits the
// unique index and collapses to the liked state instead of erroring.
func (s *likeService) Toggle(userID string, target model.LikeTarget) (*LikeResult, error) {
	if !target.Valid() {
		return nil, apperr.InvalidTarget("like target must be exactly one of post or comment")
	}

	if _, err := s.likeRepo.FindByUserAndTarget(userID, target); err == nil {
		// Unlike. A concurrent toggle may have deleted the row already; the
		// end state is the same either way.
		if _, err := s.likeRepo.DeleteByUserAndTarget(userID, target); err != nil {
			return nil, apperr.Internal("failed to remove like", err)
		}
		return &LikeResult{Liked: false}, nil
	}

	like := &model.Like{
		UserID:     userID,
		TargetType: target.Type,
		TargetID:   target.ID,
	}

	if err := s.likeRepo.Create(like); err != nil {
		if errors.Is(err, repository.ErrDuplicateLike) {
			// Lost a race against an identical toggle; the row exists, which
			// is exactly the state this call wanted.
			return &LikeResult{Liked: true}, nil
		}
		return nil, apperr.Internal("failed to create like", err)
	}

	return &LikeResult{Liked: true}, nil
}

// Count returns the number of likes on a target
func (s *likeService) Count(target model.LikeTarget) (int64, error) {
	if !target.Valid() {
		return 0, apperr.InvalidTarget("like target must be exactly one of post or comment")
	}
	return s.likeRepo.CountByTarget(target)
}

// IsLikedBy reports whether the user currently likes the target
func (s *likeService) IsLikedBy(userID string, target model.LikeTarget) (bool, error) {
	if !target.Valid() {
		return false, apperr.InvalidTarget("like target must be exactly one of post or comment")
	}
	if _, err := s.likeRepo.FindByUserAndTarget(userID, target); err != nil {
		return false, nil
	}
	return true, nil
}
