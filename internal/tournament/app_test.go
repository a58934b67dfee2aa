package tournament

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/models"
	"auctiondesk/internal/storage"
)

func newLaunchedApp(t *testing.T) *App {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	app := NewApp(store)
	app.Load(context.Background())
	require.Empty(t, app.Launch(context.Background(), DefaultConfig()))
	return app
}

func addTeam(t *testing.T, app *App, name string) models.Team {
	t.Helper()
	team, err := app.CreateTeam(context.Background(), CreateTeamRequest{Name: name, Captain: name + " captain"})
	require.NoError(t, err)
	return team
}

func addPlayer(t *testing.T, app *App, name, category string, base int) models.Player {
	t.Helper()
	player, err := app.CreatePlayer(context.Background(), CreatePlayerRequest{Name: name, Category: category, BasePrice: base})
	require.NoError(t, err)
	return player
}

func TestLaunch_RejectsInvalidConfig(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	app := NewApp(store)

	cfg := DefaultConfig()
	cfg.TotalTeams = 1
	cfg.Budget = 50

	errs := app.Launch(context.Background(), cfg)
	require.NotEmpty(t, errs)
	assert.False(t, app.Launched())

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "total_teams")
	assert.Contains(t, fields, "budget")
}

func TestStatePersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	app := NewApp(store)
	app.Load(context.Background())
	require.Empty(t, app.Launch(context.Background(), DefaultConfig()))
	team := addTeam(t, app, "Strikers")
	player := addPlayer(t, app, "Ash", "Gold", 200)

	// A fresh app over the same directory sees everything.
	reloaded := NewApp(store)
	reloaded.Load(context.Background())

	assert.True(t, reloaded.Launched())
	require.Len(t, reloaded.Teams(), 1)
	assert.Equal(t, team.ID, reloaded.Teams()[0].ID)
	require.Len(t, reloaded.Players(), 1)
	assert.Equal(t, player.Name, reloaded.Players()[0].Name)

	// Id generation continues past loaded entries.
	next := addPlayer(t, reloaded, "Brook", "Silver", 100)
	assert.Equal(t, player.ID+1, next.ID)
}

func TestCreateTeam_EnforcesLimitAndDefaults(t *testing.T) {
	app := newLaunchedApp(t)

	first := addTeam(t, app, "Strikers")
	assert.Equal(t, 1, first.ID)
	assert.NotEmpty(t, first.Color)

	for i := 1; i < app.Config().TotalTeams; i++ {
		addTeam(t, app, "Team")
	}

	_, err := app.CreateTeam(context.Background(), CreateTeamRequest{Name: "One Too Many", Captain: "C"})
	assert.ErrorIs(t, err, ErrTeamLimit)
}

func TestCreateTeam_RequiresLaunch(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	app := NewApp(store)

	_, err = app.CreateTeam(context.Background(), CreateTeamRequest{Name: "Strikers", Captain: "C"})
	assert.ErrorIs(t, err, ErrNotLaunched)
}

func TestUpdateTeam_ResyncsSoldEntries(t *testing.T) {
	app := newLaunchedApp(t)
	team := addTeam(t, app, "Strikers")
	player := addPlayer(t, app, "Ash", "Gold", 200)

	require.NoError(t, app.RecordSale(models.SoldPlayer{
		Player:     player,
		TeamID:     team.ID,
		TeamName:   team.Name,
		TeamColor:  team.Color,
		FinalPrice: 300,
	}))

	name := "Super Strikers"
	color := "#123456"
	_, err := app.UpdateTeam(context.Background(), team.ID, UpdateTeamRequest{Name: &name, Color: &color})
	require.NoError(t, err)

	sold := app.SoldPlayers()
	require.Len(t, sold, 1)
	assert.Equal(t, "Super Strikers", sold[0].TeamName)
	assert.Equal(t, "#123456", sold[0].TeamColor)
}

func TestDeleteTeam_BlockedBySoldPlayers(t *testing.T) {
	app := newLaunchedApp(t)
	team := addTeam(t, app, "Strikers")
	player := addPlayer(t, app, "Ash", "Gold", 200)

	require.NoError(t, app.RecordSale(models.SoldPlayer{Player: player, TeamID: team.ID, FinalPrice: 300}))

	err := app.DeleteTeam(context.Background(), team.ID)
	assert.ErrorIs(t, err, ErrTeamHasPlayers)

	// Undoing the sale frees the team.
	_, ok := app.UndoLastSale()
	require.True(t, ok)
	require.NoError(t, app.DeleteTeam(context.Background(), team.ID))
}

func TestCreatePlayer_ValidatesCategoryAndForm(t *testing.T) {
	app := newLaunchedApp(t)

	_, err := app.CreatePlayer(context.Background(), CreatePlayerRequest{Name: "Ash", Category: "Platinum", BasePrice: 100})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = app.CreatePlayer(context.Background(), CreatePlayerRequest{Name: "", Category: "Gold", BasePrice: 100})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = app.CreatePlayer(context.Background(), CreatePlayerRequest{Name: "Ash", Category: "Gold", BasePrice: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePlayer_OnlyWhilePending(t *testing.T) {
	app := newLaunchedApp(t)
	team := addTeam(t, app, "Strikers")
	player := addPlayer(t, app, "Ash", "Gold", 200)

	newBase := 250
	updated, err := app.UpdatePlayer(context.Background(), player.ID, UpdatePlayerRequest{BasePrice: &newBase})
	require.NoError(t, err)
	assert.Equal(t, 250, updated.BasePrice)

	require.NoError(t, app.RecordSale(models.SoldPlayer{Player: updated, TeamID: team.ID, FinalPrice: 300}))

	_, err = app.UpdatePlayer(context.Background(), player.ID, UpdatePlayerRequest{BasePrice: &newBase})
	assert.ErrorIs(t, err, ErrPlayerNotPending)

	err = app.DeletePlayer(context.Background(), player.ID)
	assert.ErrorIs(t, err, ErrPlayerNotPending)
}

func TestRecordSaleAndUndo(t *testing.T) {
	app := newLaunchedApp(t)
	team := addTeam(t, app, "Strikers")
	player := addPlayer(t, app, "Ash", "Gold", 200)

	require.NoError(t, app.RecordSale(models.SoldPlayer{
		Player:     player,
		TeamID:     team.ID,
		TeamName:   team.Name,
		FinalPrice: 300,
	}))

	assert.Equal(t, models.PlayerStatusSold, app.Players()[0].Status)
	require.Len(t, app.SoldPlayers(), 1)

	// Selling the same player twice is rejected.
	err := app.RecordSale(models.SoldPlayer{Player: player, TeamID: team.ID, FinalPrice: 300})
	assert.ErrorIs(t, err, ErrPlayerNotPending)

	undone, ok := app.UndoLastSale()
	require.True(t, ok)
	assert.Equal(t, player.ID, undone.Player.ID)
	assert.Equal(t, models.PlayerStatusPending, app.Players()[0].Status)
	assert.Empty(t, app.SoldPlayers())

	_, ok = app.UndoLastSale()
	assert.False(t, ok)
}

func TestReturnPlayer_AppliesDemotion(t *testing.T) {
	app := newLaunchedApp(t)
	player := addPlayer(t, app, "Ash", "Gold", 500)

	require.NoError(t, app.ReturnPlayer(player.ID, auction.DemotionResult{
		Demoted:      true,
		NewCategory:  "Silver",
		NewBasePrice: 150,
	}))

	got := app.Players()[0]
	assert.Equal(t, "Silver", got.Category)
	assert.Equal(t, 150, got.BasePrice)
	assert.Equal(t, models.PlayerStatusPending, got.Status)
}

func TestTeamSummaries(t *testing.T) {
	app := newLaunchedApp(t)
	team := addTeam(t, app, "Strikers")
	addTeam(t, app, "Titans")
	player := addPlayer(t, app, "Ash", "Gold", 200)
	addPlayer(t, app, "Brook", "Silver", 100)

	require.NoError(t, app.RecordSale(models.SoldPlayer{Player: player, TeamID: team.ID, FinalPrice: 700}))

	summaries := app.TeamSummaries()
	require.Len(t, summaries, 2)

	strikers := summaries[0]
	assert.Equal(t, 700, strikers.Spent)
	assert.Equal(t, 2300, strikers.Remaining)
	assert.Equal(t, 6, strikers.SlotsLeft)
	assert.Equal(t, 1, strikers.ByCategory["Gold"])

	pending := app.PendingByCategory()
	assert.Equal(t, 1, pending["Silver"])
	assert.Zero(t, pending["Gold"])

	titans := summaries[1]
	assert.Equal(t, 0, titans.Spent)
	assert.Equal(t, 2400, titans.BidCap.Cap)
}

func TestReset(t *testing.T) {
	app := newLaunchedApp(t)
	addTeam(t, app, "Strikers")
	addPlayer(t, app, "Ash", "Gold", 200)

	app.Reset(context.Background())

	assert.False(t, app.Launched())
	assert.Empty(t, app.Teams())
	assert.Empty(t, app.Players())
	assert.Equal(t, "setup", app.ActiveTab())

	// Ids restart after a reset.
	require.Empty(t, app.Launch(context.Background(), DefaultConfig()))
	team := addTeam(t, app, "Fresh")
	assert.Equal(t, 1, team.ID)
}
