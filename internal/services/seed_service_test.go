package services_test

import (
	"context"
	"testing"

	"lendvault/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedService_SeedBorrowers(t *testing.T) {
	h := newLedgerHarness(t)
	seeder := services.NewSeedService(h.userRepo, h.accountService(), h.balanceService(nil))

	require.NoError(t, seeder.SeedBorrowers(context.Background(), 3))

	// Three borrowers plus the fund user
	users, total, err := h.userRepo.ListUsers(0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	orgDelta := mustDecimal(t, "0")
	for _, user := range users {
		if user.IsOrganization() {
			continue
		}
		account, err := h.accountRepo.GetByOwnerID(user.ID)
		require.NoError(t, err)
		assert.True(t, account.IsActive())
		assert.True(t, account.LoanBalance.IsZero())
		// Every seeded borrower starts with an opening deposit
		assert.True(t, account.InvestmentBalance.IsPositive(),
			"borrower %s has no opening deposit", user.Email)
		orgDelta = orgDelta.Add(account.InvestmentBalance)
	}

	// Deposits mirror into the fund account
	_, orgInvestment := h.orgBalances(t)
	assert.True(t, orgInvestment.Equal(mustDecimal(t, "1000000").Add(orgDelta)),
		"fund balance %s does not reflect seeded deposits %s", orgInvestment, orgDelta)
}
