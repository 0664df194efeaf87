package dashboard

import "fmt"

// Stage is one step of a refresh cascade.
type Stage int

const (
	StageSummary Stage = iota
	StageTransactions
	StageCategories
	StageBalanceSeries
	StageCategoryChart
	StageGoals
	StageInsights
	numStages
)

var stageNames = [...]string{
	StageSummary:       "summary",
	StageTransactions:  "transactions",
	StageCategories:    "categories",
	StageBalanceSeries: "balance_series",
	StageCategoryChart: "category_chart",
	StageGoals:         "goals",
	StageInsights:      "insights",
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Cascade is an ordered list of stages.
type Cascade []Stage

var (
	// FullCascade runs after any transaction mutation and on start-up.
	FullCascade = Cascade{StageSummary, StageTransactions, StageCategories, StageBalanceSeries, StageCategoryChart, StageGoals, StageInsights}
	// GoalCascade runs after a goal is added.
	GoalCascade = Cascade{StageGoals, StageInsights}
	// CancelEditCascade runs when an in-progress edit is abandoned.
	CancelEditCascade = Cascade{StageTransactions, StageBalanceSeries, StageCategoryChart, StageGoals, StageInsights}
)

// StageError reports the stage at which a cascade aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("refresh %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MutationError reports a failed create, update or delete. Message is the
// user-facing text.
type MutationError struct {
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// User-facing mutation failure messages.
const (
	MsgAddTransactionFailed    = "Failed to add transaction"
	MsgUpdateTransactionFailed = "Failed to update transaction"
	MsgDeleteTransactionFailed = "Failed to delete transaction"
	MsgAddGoalFailed           = "Failed to add goal"
)
