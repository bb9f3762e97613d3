package setup

import (
	"reflect"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	ledgerQueries "github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	session       *game.Session
	saveRepo      savegame.Repository
	catalog       game.ScenarioCatalog
	tune          game.PlannerTuner
	publisher     game.TickPublisher
	clock         shared.Clock
	autosaveSlots int
	buildInfo     gameQueries.BuildInfo
}

// Options are the optional dependencies of a HandlerRegistry
type Options struct {
	Publisher     game.TickPublisher
	Clock         shared.Clock
	Tune          game.PlannerTuner
	AutosaveSlots int
	BuildInfo     gameQueries.BuildInfo
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	session *game.Session,
	saveRepo savegame.Repository,
	catalog game.ScenarioCatalog,
	opts Options,
) *HandlerRegistry {
	// Default to real clock if not provided
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.Publisher == nil {
		opts.Publisher = game.NopPublisher{}
	}

	return &HandlerRegistry{
		session:       session,
		saveRepo:      saveRepo,
		catalog:       catalog,
		tune:          opts.Tune,
		publisher:     opts.Publisher,
		clock:         opts.Clock,
		autosaveSlots: opts.AutosaveSlots,
		buildInfo:     opts.BuildInfo,
	}
}

// RegisterGameHandlers registers the campaign commands and queries
//
// This method registers:
//   - ResetCampaignCommand, AdvanceMonthsCommand and SubmitOverrideCommand (world mutations)
//   - SaveGameCommand and LoadGameCommand (persistence)
//   - GetStateSummaryQuery, GetRecommendationQuery and ExportTimelineQuery (read-only views)
//   - ListSavesQuery and GetBuildInfoQuery
func (r *HandlerRegistry) RegisterGameHandlers(m mediator.Mediator) error {
	handlers := []struct {
		request interface{}
		handler mediator.RequestHandler
	}{
		{&gameCommands.ResetCampaignCommand{}, gameCommands.NewResetCampaignHandler(r.session, r.catalog, r.tune)},
		{&gameCommands.AdvanceMonthsCommand{}, gameCommands.NewAdvanceMonthsHandler(r.session, r.saveRepo, r.publisher, r.clock, r.autosaveSlots)},
		{&gameCommands.SubmitOverrideCommand{}, gameCommands.NewSubmitOverrideHandler(r.session)},
		{&gameCommands.SaveGameCommand{}, gameCommands.NewSaveGameHandler(r.session, r.saveRepo, r.clock)},
		{&gameCommands.LoadGameCommand{}, gameCommands.NewLoadGameHandler(r.session, r.saveRepo, r.catalog, r.tune)},
		{&gameQueries.GetStateSummaryQuery{}, gameQueries.NewGetStateSummaryHandler(r.session)},
		{&gameQueries.GetRecommendationQuery{}, gameQueries.NewGetRecommendationHandler(r.session)},
		{&gameQueries.ExportTimelineQuery{}, gameQueries.NewExportTimelineHandler(r.session)},
		{&gameQueries.ListSavesQuery{}, gameQueries.NewListSavesHandler(r.saveRepo)},
		{&gameQueries.GetBuildInfoQuery{}, gameQueries.NewGetBuildInfoHandler(r.buildInfo)},
	}
	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterLedgerHandlers registers all ledger query handlers with the mediator
//
// This method registers:
//   - GetTransactionsQuery → GetTransactionsHandler (journal listing)
//   - GetProfitLossQuery → GetProfitLossHandler (for P&L reports)
//   - GetCashFlowQuery → GetCashFlowHandler (for cash flow reports)
//
// All of them read the published view of the session, so they are served during a tick.
func (r *HandlerRegistry) RegisterLedgerHandlers(m mediator.Mediator) error {
	// Register GetTransactionsQuery handler
	getTransactionsHandler := ledgerQueries.NewGetTransactionsHandler(r.session)
	if err := m.Register(
		reflect.TypeOf(&ledgerQueries.GetTransactionsQuery{}),
		getTransactionsHandler,
	); err != nil {
		return err
	}

	// Register GetProfitLossQuery handler
	getProfitLossHandler := ledgerQueries.NewGetProfitLossHandler(r.session)
	if err := m.Register(
		reflect.TypeOf(&ledgerQueries.GetProfitLossQuery{}),
		getProfitLossHandler,
	); err != nil {
		return err
	}

	// Register GetCashFlowQuery handler
	getCashFlowHandler := ledgerQueries.NewGetCashFlowHandler(r.session)
	if err := m.Register(
		reflect.TypeOf(&ledgerQueries.GetCashFlowQuery{}),
		getCashFlowHandler,
	); err != nil {
		return err
	}

	return nil
}

// CreateConfiguredMediator creates a new mediator with every handler registered and the
// given middlewares installed, outermost first. Request validation always runs innermost.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()

	for _, mw := range middlewares {
		if mw != nil {
			m.RegisterMiddleware(mw)
		}
	}
	m.RegisterMiddleware(ValidationMiddleware())

	if err := r.RegisterGameHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterLedgerHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}
