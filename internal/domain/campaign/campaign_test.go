package campaign_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

var start = shared.NewMonth(1990, 1)

func obs(monthsIn int) campaign.Observation {
	return campaign.Observation{
		Month:         start.AddMonths(monthsIn),
		CashCents:     1_000_000,
		Share:         map[string]float64{},
		ReleasedNodes: map[string]bool{},
		FiredEvents:   map[string]shared.Month{},
	}
}

func newCampaign(t *testing.T, goals []campaign.Goal, fails []campaign.FailCondition) *campaign.Campaign {
	t.Helper()
	c, err := campaign.New("classic_1990", "normal", start, start.AddMonths(120), goals, fails)
	require.NoError(t, err)
	return c
}

func TestEvaluate_SucceedsWhenAllGoalsDone(t *testing.T) {
	// Arrange
	c := newCampaign(t, []campaign.Goal{
		{Kind: campaign.GoalReachShare, Segment: "desktop", MinShare: 0.3, Deadline: start.AddMonths(60)},
		{Kind: campaign.GoalLaunchNode, Node: "N350", Deadline: start.AddMonths(60)},
	}, nil)

	// Act
	o := obs(10)
	o.Share["desktop"] = 0.15
	changed := c.Evaluate(o)

	// Assert
	assert.False(t, changed)
	assert.InDelta(t, 0.5, c.Goals[0].Progress, 1e-6)
	assert.Equal(t, campaign.StatusInProgress, c.Status)

	o = obs(20)
	o.Share["desktop"] = 0.31
	o.ReleasedNodes["N350"] = true
	assert.True(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusSuccess, c.Status)
	assert.Equal(t, 2, c.DoneCount())
	require.NotNil(t, c.FinishedAt)
	assert.Equal(t, start.AddMonths(20), *c.FinishedAt)
}

func TestEvaluate_TerminalStatusIsFrozen(t *testing.T) {
	c := newCampaign(t, nil, []campaign.FailCondition{{Kind: campaign.FailCashBelow, ThresholdCents: 0}})

	o := obs(3)
	o.CashCents = -1
	require.True(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusFailed, c.Status)

	o = obs(4)
	o.CashCents = 1 << 40
	assert.False(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusFailed, c.Status)
	assert.Equal(t, start.AddMonths(3), *c.FinishedAt)
}

func TestEvaluate_MissedDeadlineFails(t *testing.T) {
	c := newCampaign(t, []campaign.Goal{
		{Kind: campaign.GoalProfitTarget, ProfitCents: 1000, Deadline: start.AddMonths(12)},
	}, nil)

	o := obs(12)
	o.ProfitCents = 999
	assert.False(t, c.Evaluate(o), "still allowed on the deadline month")

	o = obs(13)
	assert.True(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusFailed, c.Status)
	assert.Contains(t, c.Reason, "missed goal")
}

func TestEvaluate_ShareBelowCheckedOnlyAtDeadline(t *testing.T) {
	deadline := start.AddMonths(24)
	c := newCampaign(t, []campaign.Goal{
		{Kind: campaign.GoalLaunchNode, Node: "N500", Deadline: start.AddMonths(100)},
	}, []campaign.FailCondition{
		{Kind: campaign.FailShareBelow, Segment: "desktop", MinShare: 0.1, Deadline: &deadline},
	})

	o := obs(5)
	o.Share["desktop"] = 0.01
	assert.False(t, c.Evaluate(o))

	o = obs(24)
	o.Share["desktop"] = 0.05
	assert.True(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusFailed, c.Status)
}

func TestEvaluate_CampaignEndWithOpenGoalsFails(t *testing.T) {
	c := newCampaign(t, []campaign.Goal{
		{Kind: campaign.GoalLaunchNode, Node: "N250", Deadline: start.AddMonths(200)},
	}, nil)

	assert.True(t, c.Evaluate(obs(120)))
	assert.Equal(t, campaign.StatusFailed, c.Status)
}

func TestEvaluate_SurviveEventNeedsTheDeadline(t *testing.T) {
	c := newCampaign(t, []campaign.Goal{
		{Kind: campaign.GoalSurviveEvent, EventID: "dram_crash", Deadline: start.AddMonths(30)},
	}, nil)

	o := obs(20)
	o.FiredEvents["dram_crash"] = start.AddMonths(10)
	c.Evaluate(o)
	assert.InDelta(t, 0.5, c.Goals[0].Progress, 1e-9)
	assert.False(t, c.Goals[0].Done)

	o.Month = start.AddMonths(30)
	assert.True(t, c.Evaluate(o))
	assert.Equal(t, campaign.StatusSuccess, c.Status)
}

func TestNew_RejectsBadGoals(t *testing.T) {
	_, err := campaign.New("x", "normal", start, start, nil, nil)
	assert.Error(t, err)

	_, err = campaign.New("x", "normal", start, start.AddMonths(1), []campaign.Goal{{Kind: campaign.GoalReachShare, Segment: "d", MinShare: 2}}, nil)
	assert.Error(t, err)

	_, err = campaign.New("x", "normal", start, start.AddMonths(1), []campaign.Goal{{Kind: "WIN"}}, nil)
	assert.Error(t, err)
}

func TestNew_RejectsBadFailConditions(t *testing.T) {
	end := start.AddMonths(12)
	cases := map[string]campaign.FailCondition{
		"unknown kind":       {Kind: "BANKRUPT"},
		"share no segment":   {Kind: campaign.FailShareBelow, MinShare: 0.1},
		"share out of range": {Kind: campaign.FailShareBelow, Segment: "desktop", MinShare: 1.5},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := campaign.New("x", "normal", start, end, nil, []campaign.FailCondition{f})

			var verr *shared.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}

	_, err := campaign.New("x", "normal", start, end, nil, []campaign.FailCondition{
		{Kind: campaign.FailCashBelow, ThresholdCents: -100},
		{Kind: campaign.FailShareBelow, Segment: "desktop", MinShare: 0.05},
	})
	assert.NoError(t, err)
}

func TestClone_IsIndependent(t *testing.T) {
	deadline := start.AddMonths(5)
	c := newCampaign(t, []campaign.Goal{{Kind: campaign.GoalLaunchNode, Node: "N1", Deadline: deadline}},
		[]campaign.FailCondition{{Kind: campaign.FailShareBelow, Segment: "s", MinShare: 0.1, Deadline: &deadline}})

	clone := c.Clone()
	clone.Goals[0].Done = true
	*clone.Fails[0].Deadline = start

	assert.False(t, c.Goals[0].Done)
	assert.Equal(t, deadline, *c.Fails[0].Deadline)
}

func TestDifficulty(t *testing.T) {
	d := campaign.Normal()
	require.NoError(t, d.Validate())
	d.CashMultiplier = 1.5
	assert.Equal(t, int64(150), d.ScaleCash(100))

	d.TakeOrPayFrac = 2
	assert.Error(t, d.Validate())
}

func TestTutorial_TracksFirstUnfinishedStep(t *testing.T) {
	tut := &campaign.Tutorial{
		Enabled:            true,
		CashThresholdCents: 0,
		Steps: []campaign.TutorialStep{
			{ID: campaign.StepPriceCut}, {ID: campaign.StepFoundryContract},
			{ID: campaign.StepTapeoutExpedite}, {ID: campaign.StepPositiveCash24M},
		},
	}

	step, idx, ok := tut.Current()
	require.True(t, ok)
	assert.Equal(t, campaign.StepPriceCut, step.ID)
	assert.Equal(t, 0, idx)

	tut.Complete(campaign.StepPriceCut)
	tut.Complete(campaign.StepFoundryContract)
	tut.ObserveCash(start, start.AddMonths(23), 10)
	step, _, _ = tut.Current()
	assert.Equal(t, campaign.StepTapeoutExpedite, step.ID)

	tut.Complete(campaign.StepTapeoutExpedite)
	tut.ObserveCash(start, start.AddMonths(24), 10)
	_, idx, ok = tut.Current()
	assert.False(t, ok)
	assert.Equal(t, 4, idx)
}
