package domain

// StageRule is the follow-up payload configured for one stage.
type StageRule struct {
	Label    string   // Label node ID applied to the derived issue (optional)
	Template string   // Body template of the derived issue (optional)
	Columns  []string // Extra column names that map to the stage
}

// StageRules is the immutable Stage -> StageRule table of a deployment.
type StageRules map[Stage]StageRule

// Aliases returns the per-stage column aliases for building a Vocabulary.
func (r StageRules) Aliases() map[Stage][]string {
	aliases := make(map[Stage][]string, len(r))
	for s, rule := range r {
		if len(rule.Columns) > 0 {
			aliases[s] = rule.Columns
		}
	}
	return aliases
}

// Action is the decision taken for a resolved stage.
type Action int

// Actions.
const (
	ActionSkip Action = iota
	ActionCreateAndLink
)

// String returns the action name.
func (a Action) String() string {
	if a == ActionCreateAndLink {
		return "create-and-link"
	}
	return "skip"
}

// Transition is the policy decision for one stage.
type Transition struct {
	Rule   StageRule
	Action Action
	Stage  Stage
}

// TransitionPolicy decides whether a stage warrants a follow-up issue.
type TransitionPolicy struct {
	rules StageRules
}

// NewTransitionPolicy creates a policy over a copy of the given rules.
func NewTransitionPolicy(rules StageRules) *TransitionPolicy {
	copied := make(StageRules, len(rules))
	for s, r := range rules {
		copied[s] = r
	}
	return &TransitionPolicy{rules: copied}
}

// Decide classifies the stage. Only actionable stages yield ActionCreateAndLink.
func (p *TransitionPolicy) Decide(stage Stage) Transition {
	if !stage.IsActionable() {
		return Transition{Action: ActionSkip, Stage: stage}
	}
	return Transition{
		Action: ActionCreateAndLink,
		Stage:  stage,
		Rule:   p.rules[stage],
	}
}

// Rule returns the configured rule for a stage.
func (p *TransitionPolicy) Rule(stage Stage) (StageRule, bool) {
	r, ok := p.rules[stage]
	return r, ok
}
