package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFollowUp = "PVT_followup"

func testIssueContext() *domain.IssueContext {
	return &domain.IssueContext{
		Issue: domain.Issue{
			ID:     "I_42",
			Number: 42,
			Title:  "Launch video",
			Body:   "Script for the launch.",
			Labels: []domain.Label{{ID: "LA_triage"}, {ID: "LA_video"}},
		},
		Projects: []domain.Project{{
			ID:         "PRO_7",
			DatabaseID: 7,
			Name:       "Content Creation",
			Columns: []domain.Column{
				{ID: "COL_1", DatabaseID: 1, Name: "To Do"},
				{ID: "COL_2", DatabaseID: 2, Name: "Planning"},
				{ID: "COL_5", DatabaseID: 5, Name: "Published"},
			},
		}},
	}
}

func movedEvent(column int64) domain.CardMoveEvent {
	return domain.CardMoveEvent{
		EventName:      domain.EventProjectCard,
		Action:         domain.ActionMoved,
		RepositoryID:   "R_1",
		RepositoryName: "videos",
		Owner:          "acme",
		ContentURL:     "https://api.github.com/repos/acme/videos/issues/42",
		ProjectURL:     "https://api.github.com/projects/7",
		ColumnID:       column,
	}
}

func testConfig() *domain.Config {
	cfg := domain.NewDefaultConfig()
	cfg.Labels.Sentinel = "LA_triage"
	cfg.Tracker.FollowUpProject = testFollowUp
	cfg.Tracker.Token = "secret-token"
	return cfg
}

// testEnv bundles a container wired to mocks.
type testEnv struct {
	c       *app.Container
	tracker *testutil.MockTracker
	outputs *testutil.MockOutputWriter
	events  *testutil.MockEventSource
	manager *testutil.MockConfigManager
	stderr  *bytes.Buffer
}

func newTestEnv(t *testing.T, cfg *domain.Config) *testEnv {
	t.Helper()
	env := &testEnv{
		tracker: testutil.NewMockTracker(testIssueContext()),
		outputs: &testutil.MockOutputWriter{},
		events:  &testutil.MockEventSource{Event: movedEvent(2)},
		manager: &testutil.MockConfigManager{Info: domain.ConfigInfo{Path: "/repo/.github/cardflow.toml"}},
		stderr:  &bytes.Buffer{},
	}
	env.tracker.Caps.LabelsOnCreate = true

	env.c = app.NewWithDeps(app.Config{WorkDir: t.TempDir()},
		&testutil.MockConfigLoader{Config: cfg}, env.manager, env.tracker, env.stderr)
	env.c.Events = env.events
	env.c.Outputs = env.outputs
	env.c.Repository = &testutil.MockRepositoryLocator{Owner: "acme", Name: "videos"}
	return env
}

func (e *testEnv) execute(args ...string) (string, error) {
	root := NewRootCommand(e.c, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(e.stderr)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	root := NewRootCommand(nil, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Pipeline Commands:")
	assert.Contains(t, out.String(), "run")
	assert.Contains(t, out.String(), "stages")
}

func TestRunCommand_CreatesIssue(t *testing.T) {
	env := newTestEnv(t, testConfig())

	out, err := env.execute("run")

	require.NoError(t, err)
	assert.Equal(t, "completed", env.outputs.Values[outputResult])
	assert.Equal(t, "100", env.outputs.Values[outputIssueNumber])
	assert.Equal(t, domain.StageNamePlanning, env.outputs.Values[outputStage])
	assert.Contains(t, out, "created #100 [PLANNING]: Launch video")
	assert.Equal(t, []string{
		testutil.CallCreateIssue,
		testutil.CallAddToProject,
		testutil.CallUpdateIssue,
	}, env.tracker.WriteCalls())
}

func TestRunCommand_NoOp(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.events.Event = movedEvent(5)

	out, err := env.execute("run")

	require.NoError(t, err)
	assert.Equal(t, "noop", env.outputs.Values[outputResult])
	assert.Equal(t, domain.StageNamePublished, env.outputs.Values[outputStage])
	assert.NotContains(t, env.outputs.Values, outputIssueNumber)
	assert.Contains(t, out, "no-op")
	assert.Empty(t, env.tracker.WriteCalls())
}

func TestRunCommand_StepFailureWritesOutputs(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.tracker.FailAt = 3 // fetch, create-issue, add-to-project

	out, err := env.execute("run")

	require.Error(t, err)
	assert.Equal(t, resultFailed, env.outputs.Values[outputResult])
	assert.Equal(t, "add-to-project", env.outputs.Values[outputFailedStep])
	assert.Contains(t, out, "create-issue")
}

func TestRunCommand_EventUnavailable(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.events.Err = domain.ErrEventUnavailable

	_, err := env.execute("run")

	assert.ErrorIs(t, err, domain.ErrEventUnavailable)
	assert.Empty(t, env.tracker.Calls)
}

func TestRunCommand_ConfigError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.c.ConfigLoader = &testutil.MockConfigLoader{Err: domain.ErrInvalidConfig}

	_, err := env.execute("run")

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRunCommand_PrintsConfigWarnings(t *testing.T) {
	cfg := testConfig()
	cfg.Warnings = []string{"unknown section: extra"}
	env := newTestEnv(t, cfg)

	_, err := env.execute("run")

	require.NoError(t, err)
	assert.Contains(t, env.stderr.String(), "Warning: unknown section: extra")
}

func TestPlanCommand_FromFlags_YAML(t *testing.T) {
	env := newTestEnv(t, testConfig())

	out, err := env.execute("plan", "--issue", "42", "--project", "7", "--column", "2", "--repo", "acme/videos", "-o", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "action: create-and-link")
	assert.Contains(t, out, "stage: PLANNING")
	assert.Contains(t, out, "title: '[PLANNING]: Launch video'")
	assert.Contains(t, out, "- LA_video")
	assert.NotContains(t, out, "LA_triage")
	assert.Contains(t, out, "follow_up_project: "+testFollowUp)
	assert.Empty(t, env.tracker.WriteCalls())
}

func TestPlanCommand_FromEvent_Text(t *testing.T) {
	env := newTestEnv(t, testConfig())

	out, err := env.execute("plan")

	require.NoError(t, err)
	assert.Contains(t, out, "New issue: [PLANNING]: Launch video")
	assert.Contains(t, out, "1. create derived issue")
	assert.Empty(t, env.tracker.WriteCalls())
}

func TestPlanCommand_DefaultRepository(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.c.Repository = &testutil.MockRepositoryLocator{Err: domain.ErrRepositoryRequired}

	_, err := env.execute("plan", "--issue", "42", "--project", "7", "--column", "2")

	assert.ErrorIs(t, err, domain.ErrRepositoryRequired)
}

func TestPlanCommand_InvalidRepoFlag(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.execute("plan", "--issue", "42", "--project", "7", "--column", "2", "--repo", "videos")

	assert.ErrorIs(t, err, domain.ErrRepositoryRequired)
}

func TestPlanCommand_UnknownFormat(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.execute("plan", "-o", "json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	assert.Empty(t, env.tracker.Calls)
}

func TestStagesCommand_ListsStages(t *testing.T) {
	cfg := testConfig()
	cfg.Stages[domain.StageProduction] = domain.StageRule{Label: "LA_prod", Columns: []string{"Recording"}}
	env := newTestEnv(t, cfg)

	out, err := env.execute("stages")

	require.NoError(t, err)
	assert.Contains(t, out, "STAGE")
	assert.Regexp(t, `planning\s+create-and-link\s+-\s+yes\s+PLANNING`, out)
	assert.Regexp(t, `production\s+create-and-link\s+LA_prod\s+-\s+PRODUCTION, Recording`, out)
	assert.Regexp(t, `published\s+skip`, out)
}

func TestConfigShowCommand_HidesToken(t *testing.T) {
	env := newTestEnv(t, testConfig())

	out, err := env.execute("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "/repo/.github/cardflow.toml (not found)")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "token = '(set)'")
	assert.Contains(t, out, "follow_up_project = '"+testFollowUp+"'")
	assert.NotContains(t, out, "secret-token")
}

func TestConfigTemplateCommand(t *testing.T) {
	env := newTestEnv(t, nil)
	env.c.ConfigLoader = &testutil.MockConfigLoader{Err: errors.New("broken file")}

	out, err := env.execute("config", "template")

	require.NoError(t, err)
	assert.Contains(t, out, "[stages.planning]")
	assert.Contains(t, out, "[stages.post-production]")
}

func TestConfigInitCommand(t *testing.T) {
	env := newTestEnv(t, testConfig())

	out, err := env.execute("config", "init")

	require.NoError(t, err)
	assert.True(t, env.manager.InitCalled)
	assert.NotNil(t, env.manager.Written)
	assert.Contains(t, out, "Created config: /repo/.github/cardflow.toml")
}

func TestConfigInitCommand_Exists(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.manager.InitErr = domain.ErrConfigExists

	_, err := env.execute("config", "init")

	assert.ErrorIs(t, err, domain.ErrConfigExists)
}
