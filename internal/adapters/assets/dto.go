package assets

// YAML documents of the asset pack. Dates are strings ("YYYY-MM" or "YYYY-MM-DD") and are
// converted to months when the pack is loaded.

type marketsDoc struct {
	Segments []segmentDTO `yaml:"segments"`
}

type segmentDTO struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Epoch           string  `yaml:"epoch"`
	BaseDemandUnits int64   `yaml:"base_demand_units"`
	BaseASPCents    int64   `yaml:"base_asp_cents"`
	Elasticity      float64 `yaml:"elasticity"`
	AnnualTrend     float64 `yaml:"annual_trend"`
	ShockMode       string  `yaml:"shock_mode"`
}

type techDoc struct {
	Nodes []techNodeDTO `yaml:"nodes"`
}

type techNodeDTO struct {
	ID               string   `yaml:"id"`
	YearAvailable    int      `yaml:"year_available"`
	WaferCostCents   int64    `yaml:"wafer_cost_cents"`
	MaskSetCostCents int64    `yaml:"mask_set_cost_cents"`
	YieldBaseline    float64  `yaml:"yield_baseline"`
	PerfIndex        float64  `yaml:"perf_index"`
	LeadTimeMonths   int      `yaml:"lead_time_months"`
	Dependencies     []string `yaml:"dependencies"`
}

type difficultyDoc struct {
	Presets []difficultyDTO `yaml:"presets"`
}

type difficultyDTO struct {
	ID                      string  `yaml:"id"`
	CashMultiplier          float64 `yaml:"cash_multiplier"`
	MinMarginFrac           float64 `yaml:"min_margin_frac"`
	PriceEpsilonFrac        float64 `yaml:"price_epsilon_frac"`
	TakeOrPayFrac           float64 `yaml:"take_or_pay_frac"`
	GrowthMultiplier        float64 `yaml:"growth_multiplier"`
	EventSeverityMultiplier float64 `yaml:"event_severity_multiplier"`
}

type aiDoc struct {
	Weights struct {
		Share     float64 `yaml:"share"`
		Margin    float64 `yaml:"margin"`
		Liquidity float64 `yaml:"liquidity"`
		Portfolio float64 `yaml:"portfolio"`
	} `yaml:"weights"`
	Planner struct {
		BeamWidth          int     `yaml:"beam_width"`
		Months             int     `yaml:"months"`
		QuarterStep        int     `yaml:"quarter_step"`
		Discount           float64 `yaml:"discount"`
		PriceStepFrac      float64 `yaml:"price_step_frac"`
		CapacityStepWafers int64   `yaml:"capacity_step_wafers"`
		RDStepCents        int64   `yaml:"rd_step_cents"`
		Portfolio          string  `yaml:"portfolio"`
		Parallelism        int     `yaml:"parallelism"`
	} `yaml:"planner"`
	Tactics struct {
		ShareDropDelta           float64 `yaml:"share_drop_delta"`
		PriceEpsilonFrac         float64 `yaml:"price_epsilon_frac"`
		MinMarginFrac            float64 `yaml:"min_margin_frac"`
		ShortageRaiseThreshold   float64 `yaml:"shortage_raise_threshold"`
		ShortageRaiseEpsilonFrac float64 `yaml:"shortage_raise_epsilon_frac"`
		CashLiquidityFloorK      float64 `yaml:"cash_liquidity_floor_k"`
		RDBoostFrac              float64 `yaml:"rd_boost_frac"`
		RDCutFrac                float64 `yaml:"rd_cut_frac"`
	} `yaml:"tactics"`
}

type scenarioDoc struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	StartDate   string          `yaml:"start_date"`
	EndDate     string          `yaml:"end_date"`
	Difficulty  string          `yaml:"difficulty"`
	Player      companyDTO      `yaml:"player"`
	AICompanies int             `yaml:"ai_companies"`
	AITemplate  companyDTO      `yaml:"ai_template"`
	Finance     financeDTO      `yaml:"finance"`
	Goals       []goalDTO       `yaml:"goals"`
	Fails       []failDTO       `yaml:"fail_conditions"`
	Events      []eventDTO      `yaml:"events"`
	Tutorial    *tutorialDTO    `yaml:"tutorial"`
	Rules       *rulesOverrides `yaml:"rules"`
}

type companyDTO struct {
	Name              string   `yaml:"name"`
	CashCents         int64    `yaml:"cash_cents"`
	Node              string   `yaml:"node"`
	DieAreaMM2        float64  `yaml:"die_area_mm2"`
	ASPCents          int64    `yaml:"asp_cents"`
	BaseCapacityUnits int64    `yaml:"base_capacity_units"`
	RDBudgetCents     int64    `yaml:"rd_budget_cents"`
	Segments          []string `yaml:"segments"`
}

type financeDTO struct {
	RevenueLagDays int `yaml:"revenue_lag_days"`
	COGSLagDays    int `yaml:"cogs_lag_days"`
	RDLagDays      int `yaml:"rd_lag_days"`
}

type goalDTO struct {
	Type        string  `yaml:"type"`
	Segment     string  `yaml:"segment"`
	MinShare    float64 `yaml:"min_share"`
	Node        string  `yaml:"node"`
	ProfitCents int64   `yaml:"profit_cents"`
	EventID     string  `yaml:"event_id"`
	Deadline    string  `yaml:"deadline"`
}

type failDTO struct {
	Type           string  `yaml:"type"`
	ThresholdCents int64   `yaml:"threshold_cents"`
	Segment        string  `yaml:"segment"`
	MinShare       float64 `yaml:"min_share"`
	Deadline       string  `yaml:"deadline"`
}

type eventDTO struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Kind            string  `yaml:"kind"`
	Target          string  `yaml:"target"`
	Trigger         string  `yaml:"trigger"`
	DemandShock     float64 `yaml:"demand_shock"`
	RefPriceShock   float64 `yaml:"ref_price_shock"`
	ElasticityDelta float64 `yaml:"elasticity_delta"`
	DurationMonths  int     `yaml:"duration_months"`
	CashCents       int64   `yaml:"cash_cents"`
	DelayYears      int     `yaml:"delay_years"`
	CostFactor      float64 `yaml:"cost_factor"`
}

type tutorialDTO struct {
	CashThresholdCents int64 `yaml:"cash_threshold_cents_month24"`
	Steps              []struct {
		ID   string `yaml:"id"`
		Desc string `yaml:"desc"`
		Hint string `yaml:"hint"`
	} `yaml:"steps"`
}

// rulesOverrides lets a scenario tweak a few world constants
type rulesOverrides struct {
	PerfBoostWeight   *float64 `yaml:"perf_boost_weight"`
	BuildAheadFrac    *float64 `yaml:"build_ahead_frac"`
	ExpediteCostCents *int64   `yaml:"expedite_cost_cents"`
}
