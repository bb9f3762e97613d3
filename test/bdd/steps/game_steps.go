package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/persistence"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/application/setup"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

// gameContext holds one or two live games and the outcome of the last command
type gameContext struct {
	pack   *assets.Pack
	game   common.Mediator
	second common.Mediator

	err          error
	lastAdvance  *gameCommands.AdvanceMonthsResponse
	saves        map[string]*gameCommands.SaveGameResponse
	listing      []gameQueries.SaveInfo
	notedASP     int64
	notedASPSeen bool
}

func (gc *gameContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	gc.game = nil
	gc.second = nil
	gc.err = nil
	gc.lastAdvance = nil
	gc.saves = make(map[string]*gameCommands.SaveGameResponse)
	gc.listing = nil
	gc.notedASP = 0
	gc.notedASPSeen = false
	return nil
}

// newGame wires a complete in-process game; the primary one persists to the shared database
func (gc *gameContext) newGame(scenario string, persistent bool) (common.Mediator, error) {
	if gc.pack == nil {
		pack, err := assets.LoadEmbedded()
		if err != nil {
			return nil, err
		}
		gc.pack = pack
	}

	var opts setup.Options
	opts.Tune = helpers.FastPlanner
	opts.Clock = shared.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	opts.AutosaveSlots = 3

	var registry *setup.HandlerRegistry
	if persistent {
		registry = setup.NewHandlerRegistry(game.NewSession(), persistence.NewGormSaveRepository(helpers.SharedTestDB), gc.pack, opts)
	} else {
		registry = setup.NewHandlerRegistry(game.NewSession(), helpers.NewMockSaveRepository(), gc.pack, opts)
	}
	med, err := registry.CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}
	if _, err := med.Send(context.Background(), &gameCommands.ResetCampaignCommand{Scenario: scenario}); err != nil {
		return nil, err
	}
	return med, nil
}

// ============================================================================
// Setup Steps
// ============================================================================

func (gc *gameContext) aNewCampaign(scenario string) error {
	med, err := gc.newGame(scenario, true)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", scenario, err)
	}
	gc.game = med
	return nil
}

func (gc *gameContext) aSecondCampaign(scenario string) error {
	med, err := gc.newGame(scenario, false)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", scenario, err)
	}
	gc.second = med
	return nil
}

func (gc *gameContext) iNoteThePlayersPrice() error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	gc.notedASP = summary.Player.ASPCents
	gc.notedASPSeen = true
	return nil
}

// ============================================================================
// Action Steps
// ============================================================================

func (gc *gameContext) iAdvanceMonths(months int) error {
	resp, err := gc.game.Send(context.Background(), &gameCommands.AdvanceMonthsCommand{Months: months})
	gc.err = err
	if err == nil {
		gc.lastAdvance = resp.(*gameCommands.AdvanceMonthsResponse)
	}
	return nil
}

func (gc *gameContext) iAdvanceTheSecondGameMonths(months int) error {
	_, err := gc.second.Send(context.Background(), &gameCommands.AdvanceMonthsCommand{Months: months})
	return err
}

func (gc *gameContext) iRaiseTheRDBudgetBy(cents int64) error {
	_, gc.err = gc.game.Send(context.Background(), &gameCommands.SubmitOverrideCommand{RDDeltaCents: &cents})
	return nil
}

func (gc *gameContext) iCutThePriceAndContractWafers(percent int, wafers, price int64) error {
	delta := -float64(percent) / 100
	_, gc.err = gc.game.Send(context.Background(), &gameCommands.SubmitOverrideCommand{
		PriceDeltaFrac: &delta,
		Capacity: &simulation.CapacityRequest{
			WafersPerMonth:     wafers,
			PricePerWaferCents: price,
			Billing:            capacity.BillingFlat,
		},
	})
	return nil
}

func (gc *gameContext) iSubmitAnEmptyOverride() error {
	_, gc.err = gc.game.Send(context.Background(), &gameCommands.SubmitOverrideCommand{})
	return nil
}

func (gc *gameContext) iTapeOutOnNode(node string) error {
	_, gc.err = gc.game.Send(context.Background(), &gameCommands.SubmitOverrideCommand{
		Tapeout: &simulation.TapeoutRequest{TechNodeID: node},
	})
	return nil
}

func (gc *gameContext) iSaveTheGameAs(name string) error {
	resp, err := gc.game.Send(context.Background(), &gameCommands.SaveGameCommand{Name: name})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	gc.saves[name] = resp.(*gameCommands.SaveGameResponse)
	return nil
}

func (gc *gameContext) iLoadTheSave(name string) error {
	id := name
	if saved, ok := gc.saves[name]; ok {
		id = saved.SaveID
	}
	_, gc.err = gc.game.Send(context.Background(), &gameCommands.LoadGameCommand{SaveID: id})
	return nil
}

func (gc *gameContext) listSaves(all bool) error {
	resp, err := gc.game.Send(context.Background(), &gameQueries.ListSavesQuery{IncludeAutosaves: all})
	if err != nil {
		return err
	}
	gc.listing = resp.(*gameQueries.ListSavesResponse).Saves
	return nil
}

func (gc *gameContext) iListTheSaves() error {
	return gc.listSaves(false)
}

func (gc *gameContext) iListTheSavesIncludingAutosaves() error {
	return gc.listSaves(true)
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (gc *gameContext) summary(med common.Mediator) (*dtos.StateSummary, error) {
	resp, err := med.Send(context.Background(), &gameQueries.GetStateSummaryQuery{WithFingerprint: true})
	if err != nil {
		return nil, err
	}
	return resp.(*dtos.StateSummary), nil
}

func (gc *gameContext) theCommandShouldSucceed() error {
	if gc.err != nil {
		return fmt.Errorf("expected success, got: %w", gc.err)
	}
	return nil
}

func (gc *gameContext) theCommandShouldFailWith(fragment string) error {
	if gc.err == nil {
		return fmt.Errorf("expected an error containing %q, got none", fragment)
	}
	if !strings.Contains(gc.err.Error(), fragment) {
		return fmt.Errorf("expected an error containing %q, got %q", fragment, gc.err.Error())
	}
	return nil
}

func (gc *gameContext) theGameMonthShouldBe(month string) error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if summary.Date != month {
		return fmt.Errorf("expected month %s, got %s", month, summary.Date)
	}
	return nil
}

func (gc *gameContext) theCampaignStatusShouldBe(status string) error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if summary.Campaign == nil {
		return fmt.Errorf("scenario has no campaign")
	}
	if summary.Campaign.Status != status {
		return fmt.Errorf("expected campaign status %s, got %s", status, summary.Campaign.Status)
	}
	return nil
}

func (gc *gameContext) thereShouldBeCompanies(n int) error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if len(summary.Companies) != n {
		return fmt.Errorf("expected %d companies, got %d", n, len(summary.Companies))
	}
	return nil
}

func (gc *gameContext) theCompaniesShouldBe(table *godog.Table) error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	byID := make(map[string]bool, len(summary.Companies))
	for _, c := range summary.Companies {
		byID[c.ID] = c.AI
	}

	for _, row := range table.Rows[1:] {
		id := getCellValue(table, row, "id")
		ai, ok := byID[id]
		if !ok {
			return fmt.Errorf("company %s not found", id)
		}
		if want := getCellValue(table, row, "ai") == "true"; ai != want {
			return fmt.Errorf("company %s: expected ai=%t, got %t", id, want, ai)
		}
	}
	return nil
}

// getCellValue returns the cell of row under columnName, or "" when the column is missing
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

func (gc *gameContext) theLastAdvanceShouldHaveAutosavedAs(name string) error {
	if gc.lastAdvance == nil {
		return fmt.Errorf("no successful advance recorded")
	}
	if gc.lastAdvance.Autosave != name {
		return fmt.Errorf("expected autosave %q, got %q", name, gc.lastAdvance.Autosave)
	}
	return nil
}

func (gc *gameContext) theLastAdvanceShouldNotHaveAutosaved() error {
	if gc.lastAdvance == nil {
		return fmt.Errorf("no successful advance recorded")
	}
	if gc.lastAdvance.Autosave != "" {
		return fmt.Errorf("expected no autosave, got %q", gc.lastAdvance.Autosave)
	}
	return nil
}

func (gc *gameContext) aSaveNamedShouldExist(name string) error {
	if err := gc.listSaves(true); err != nil {
		return err
	}
	return gc.theListingShouldContain(name)
}

func (gc *gameContext) bothGamesShouldHaveTheSameFingerprint() error {
	a, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	b, err := gc.summary(gc.second)
	if err != nil {
		return err
	}
	if a.Fingerprint != b.Fingerprint {
		return fmt.Errorf("fingerprints differ: %s vs %s", a.Fingerprint, b.Fingerprint)
	}
	return nil
}

func (gc *gameContext) thePlayerRDBudgetShouldBe(cents int64) error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if summary.Player.RDBudgetCents != cents {
		return fmt.Errorf("expected R&D budget %d, got %d", cents, summary.Player.RDBudgetCents)
	}
	return nil
}

func (gc *gameContext) thePlayersPriceShouldBeUnchanged() error {
	if !gc.notedASPSeen {
		return fmt.Errorf("price was never noted")
	}
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if summary.Player.ASPCents != gc.notedASP {
		return fmt.Errorf("expected price %d, got %d", gc.notedASP, summary.Player.ASPCents)
	}
	return nil
}

func (gc *gameContext) thePlayerShouldHaveNoFoundryContracts() error {
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if len(summary.Contracts) != 0 {
		return fmt.Errorf("expected no contracts, got %d", len(summary.Contracts))
	}
	return nil
}

func (gc *gameContext) theFingerprintShouldMatchTheSave(name string) error {
	saved, ok := gc.saves[name]
	if !ok {
		return fmt.Errorf("no save named %s in this scenario", name)
	}
	summary, err := gc.summary(gc.game)
	if err != nil {
		return err
	}
	if summary.Fingerprint != saved.Fingerprint {
		return fmt.Errorf("fingerprint %s does not match save %s", summary.Fingerprint, saved.Fingerprint)
	}
	return nil
}

func (gc *gameContext) theListingShouldContain(name string) error {
	for _, s := range gc.listing {
		if s.Name == name {
			return nil
		}
	}
	return fmt.Errorf("expected %q in the listing", name)
}

func (gc *gameContext) theListingShouldNotContain(name string) error {
	if gc.theListingShouldContain(name) == nil {
		return fmt.Errorf("did not expect %q in the listing", name)
	}
	return nil
}

// InitializeGameScenario registers the campaign, override and save steps
func InitializeGameScenario(sc *godog.ScenarioContext) {
	gc := &gameContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, gc.reset()
	})

	// Setup steps
	sc.Step(`^a new "([^"]*)" campaign$`, gc.aNewCampaign)
	sc.Step(`^a second "([^"]*)" campaign$`, gc.aSecondCampaign)
	sc.Step(`^I note the player's price$`, gc.iNoteThePlayersPrice)

	// Action steps
	sc.Step(`^I advance (-?\d+) months?$`, gc.iAdvanceMonths)
	sc.Step(`^I advance the second game (\d+) months?$`, gc.iAdvanceTheSecondGameMonths)
	sc.Step(`^I raise the R&D budget by (\d+) cents$`, gc.iRaiseTheRDBudgetBy)
	sc.Step(`^I cut the price by (\d+)% and contract (\d+) wafers at (\d+) cents each$`, gc.iCutThePriceAndContractWafers)
	sc.Step(`^I submit an empty override$`, gc.iSubmitAnEmptyOverride)
	sc.Step(`^I tape out on node "([^"]*)"$`, gc.iTapeOutOnNode)
	sc.Step(`^I save the game as "([^"]*)"$`, gc.iSaveTheGameAs)
	sc.Step(`^I load the save "([^"]*)"$`, gc.iLoadTheSave)
	sc.Step(`^I list the saves$`, gc.iListTheSaves)
	sc.Step(`^I list the saves including autosaves$`, gc.iListTheSavesIncludingAutosaves)

	// Assertion steps
	sc.Step(`^the command should succeed$`, gc.theCommandShouldSucceed)
	sc.Step(`^the command should fail with "([^"]*)"$`, gc.theCommandShouldFailWith)
	sc.Step(`^the game month should be "([^"]*)"$`, gc.theGameMonthShouldBe)
	sc.Step(`^the campaign status should be "([^"]*)"$`, gc.theCampaignStatusShouldBe)
	sc.Step(`^there should be (\d+) companies$`, gc.thereShouldBeCompanies)
	sc.Step(`^the companies should be:$`, gc.theCompaniesShouldBe)
	sc.Step(`^the last advance should have autosaved as "([^"]*)"$`, gc.theLastAdvanceShouldHaveAutosavedAs)
	sc.Step(`^the last advance should not have autosaved$`, gc.theLastAdvanceShouldNotHaveAutosaved)
	sc.Step(`^a save named "([^"]*)" should exist$`, gc.aSaveNamedShouldExist)
	sc.Step(`^both games should have the same fingerprint$`, gc.bothGamesShouldHaveTheSameFingerprint)
	sc.Step(`^the player R&D budget should be (\d+) cents$`, gc.thePlayerRDBudgetShouldBe)
	sc.Step(`^the player's price should be unchanged$`, gc.thePlayersPriceShouldBeUnchanged)
	sc.Step(`^the player should have no foundry contracts$`, gc.thePlayerShouldHaveNoFoundryContracts)
	sc.Step(`^the fingerprint should match the save "([^"]*)"$`, gc.theFingerprintShouldMatchTheSave)
	sc.Step(`^the listing should contain "([^"]*)"$`, gc.theListingShouldContain)
	sc.Step(`^the listing should not contain "([^"]*)"$`, gc.theListingShouldNotContain)
}
