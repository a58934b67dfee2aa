package auction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auctiondesk/internal/models"
)

func pendingPlayer(id int, category string, base int) models.Player {
	return models.Player{ID: id, Name: "p", Category: category, BasePrice: base, Status: models.PlayerStatusPending}
}

func TestDemote_DropsToNextTierAtLowestPendingBase(t *testing.T) {
	player := pendingPlayer(1, "Gold", 500)
	pool := []models.Player{
		player,
		pendingPlayer(2, "Silver", 300),
		pendingPlayer(3, "Silver", 150),
		pendingPlayer(4, "Bronze", 100),
	}

	result := Demote(player, pool, testConfig())

	assert.True(t, result.Demoted)
	assert.False(t, result.HalvedInPlace)
	assert.Equal(t, "Silver", result.NewCategory)
	assert.Equal(t, 150, result.NewBasePrice)
}

func TestDemote_EmptyTargetTierFallsBackToReserve(t *testing.T) {
	player := pendingPlayer(1, "Gold", 500)
	pool := []models.Player{player, pendingPlayer(4, "Bronze", 100)}

	result := Demote(player, pool, testConfig())

	assert.True(t, result.Demoted)
	assert.Equal(t, "Silver", result.NewCategory)
	assert.Equal(t, 100, result.NewBasePrice)
}

func TestDemote_SoldPlayersDoNotSetTargetBase(t *testing.T) {
	player := pendingPlayer(1, "Gold", 500)
	soldSilver := pendingPlayer(2, "Silver", 50)
	soldSilver.Status = models.PlayerStatusSold
	pool := []models.Player{player, soldSilver, pendingPlayer(3, "Silver", 200)}

	result := Demote(player, pool, testConfig())

	assert.Equal(t, 200, result.NewBasePrice)
}

func TestDemote_TerminalTierHalvesInPlace(t *testing.T) {
	player := pendingPlayer(1, "Bronze", 150)

	result := Demote(player, []models.Player{player}, testConfig())

	assert.False(t, result.Demoted)
	assert.True(t, result.HalvedInPlace)
	assert.Empty(t, result.NewCategory)
	assert.Equal(t, 75, result.NewBasePrice)
}

func TestDemote_HalvingFloorsAtOne(t *testing.T) {
	player := pendingPlayer(1, "Bronze", 1)

	result := Demote(player, []models.Player{player}, testConfig())

	assert.True(t, result.HalvedInPlace)
	assert.Equal(t, 1, result.NewBasePrice)
}

func TestDemote_UnknownCategoryHalves(t *testing.T) {
	player := pendingPlayer(1, "Mystery", 80)

	result := Demote(player, []models.Player{player}, testConfig())

	assert.False(t, result.Demoted)
	assert.True(t, result.HalvedInPlace)
	assert.Equal(t, 40, result.NewBasePrice)
}

func TestDemote_ChainTerminates(t *testing.T) {
	player := pendingPlayer(1, "Gold", 400)
	cfg := testConfig()

	// Demote repeatedly; once in the terminal tier the price only halves
	// until it pins at 1.
	pool := []models.Player{player}
	for i := 0; i < 20; i++ {
		result := Demote(player, pool, cfg)
		if result.Demoted {
			player.Category = result.NewCategory
		}
		player.BasePrice = result.NewBasePrice
		pool[0] = player
	}

	assert.Equal(t, "Bronze", player.Category)
	assert.Equal(t, 1, player.BasePrice)
}
