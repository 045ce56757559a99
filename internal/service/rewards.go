package service

import (
	"context"

	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/repository"
)

func (s *DefaultService) CreateReward(ctx context.Context, req models.CreateRewardRequest) (*models.Reward, error) {
	reward := &models.Reward{
		Name:              req.Name,
		Description:       req.Description,
		BucksCost:         req.BucksCost,
		QuantityAvailable: req.QuantityAvailable,
	}

	if err := s.repo.CreateReward(ctx, reward); err != nil {
		return nil, err
	}

	return reward, nil
}

func (s *DefaultService) UpdateReward(ctx context.Context, rewardID string, req models.CreateRewardRequest) (*models.Reward, error) {
	existing, err := s.repo.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.ErrNotFound
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.BucksCost = req.BucksCost
	existing.QuantityAvailable = req.QuantityAvailable

	if err := s.repo.UpdateReward(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *DefaultService) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return s.repo.ListRewards(ctx)
}

// Redeem debits the user's balance for a reward. The balance and stock
// guards, the debit and the REDEEMED ledger append all commit together in the
// repository transaction.
func (s *DefaultService) Redeem(ctx context.Context, userID, rewardID string, quantity int) (*repository.RedeemResult, error) {
	if quantity < 1 {
		quantity = 1
	}

	result, err := s.repo.RedeemReward(ctx, repository.RedeemParams{
		UserID:   userID,
		RewardID: rewardID,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}

	s.views.Invalidate(cache.ProfileView(userID))
	return result, nil
}

func (s *DefaultService) ListTransactions(ctx context.Context, userID string) ([]models.BucksTransaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// ReconcileUser recomputes a user's totals from the transaction ledger and
// compares them with the materialized counters. The ledger is the source of
// truth; any drift means an aggregate write escaped its transaction.
func (s *DefaultService) ReconcileUser(ctx context.Context, userID string) (*models.ReconcileResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrNotFound
	}

	totals, err := s.repo.LedgerTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledgerBalance := totals.Earned - totals.Redeemed
	consistent := totals.Earned == user.TotalBucksEarned &&
		ledgerBalance == user.CurrentBucks &&
		totals.Hours == user.TotalHours

	return &models.ReconcileResponse{
		Status:         "success",
		UserID:         userID,
		LedgerEarned:   totals.Earned,
		LedgerRedeemed: totals.Redeemed,
		LedgerBalance:  ledgerBalance,
		LedgerHours:    totals.Hours,
		StoredEarned:   user.TotalBucksEarned,
		StoredBalance:  user.CurrentBucks,
		StoredHours:    user.TotalHours,
		Consistent:     consistent,
	}, nil
}
