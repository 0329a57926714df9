package flowengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow/internal/adapters/out/flowengine"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/suite"
)

type GormStoreIntegrationTestSuite struct {
	suite.Suite
	pg       *pgtest.Database
	store    *flowengine.GormStore
	clock    *kernel.FixedClock
	recorder *stepRecorder
	engine   *flowengine.Engine
}

func (suite *GormStoreIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *GormStoreIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
	suite.store = flowengine.NewGormStore(suite.pg.DB)
	suite.clock = kernel.NewFixedClock(t0)
	suite.recorder = newStepRecorder()
	suite.engine = suite.newEngine()
}

func (suite *GormStoreIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *GormStoreIntegrationTestSuite) newEngine() *flowengine.Engine {
	defs := flowengine.DefinitionsFromRoutes(services.NewCategoryRouter().Routes())
	return flowengine.NewEngine(suite.store, defs, suite.recorder, suite.clock)
}

func (suite *GormStoreIntegrationTestSuite) drain() {
	for range 20 {
		n, err := suite.engine.RunDueJobs(context.Background())
		suite.Require().NoError(err)
		if n == 0 {
			return
		}
	}
	suite.Fail("jobs did not drain")
}

func (suite *GormStoreIntegrationTestSuite) TestApprovalProcess_RunsToCompletion() {
	ctx := context.Background()

	id, err := suite.engine.StartInstance(ctx, "electronics-order-process", "order-1", ports.Variables{
		"orderId":     "order-1",
		"totalAmount": "1024.98",
	})
	suite.Require().NoError(err)
	suite.drain()

	tasks, err := suite.engine.QueryTasks(ctx, ports.TaskQuery{CandidateGroups: []string{services.QATeam}})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	suite.Equal("order-1", tasks[0].BusinessKey)
	suite.Equal("electronics-order-process", tasks[0].ProcessKey)

	task, err := suite.engine.GetTask(ctx, tasks[0].ID)
	suite.Require().NoError(err)
	suite.Equal("Quality Assurance Inspection", task.Name)

	suite.Require().NoError(suite.engine.CompleteTask(ctx, task.ID, ports.Variables{
		flowengine.DecisionVariable: true,
		"approver":                  "qa-lead",
	}))
	suite.drain()

	inst, err := suite.engine.GetInstance(ctx, id)
	suite.Require().NoError(err)
	suite.Equal(ports.InstanceCompleted, inst.State)
	suite.Equal("1024.98", inst.Variables.String("totalAmount"))
	suite.Equal("qa-lead", inst.Variables.String("approver"))
	suite.Require().NotNil(inst.EndedAt)
	suite.WithinDuration(t0, *inst.EndedAt, time.Millisecond)
	suite.Equal([]string{
		"electronics/validate", "electronics/pay", "electronics/fulfill", "electronics/ship",
	}, suite.recorder.Calls())

	_, err = suite.engine.GetTask(ctx, task.ID)
	suite.Require().ErrorIs(err, ports.ErrTaskNotFound)
}

func (suite *GormStoreIntegrationTestSuite) TestStartInstance_ConcurrentStartsShareOneInstance() {
	ctx := context.Background()

	const starters = 8
	ids := make([]string, starters)
	var wg sync.WaitGroup
	for i := range starters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := suite.newEngine().StartInstance(ctx, "clothing-order-process", "order-2", nil)
			suite.NoError(err)
			ids[i] = id
		}()
	}
	wg.Wait()

	for _, id := range ids {
		suite.Equal(ids[0], id)
	}
}

func (suite *GormStoreIntegrationTestSuite) TestClaimDueJobs_SkipsLeasedJobs() {
	ctx := context.Background()
	for _, key := range []string{"order-3", "order-4", "order-5"} {
		_, err := suite.engine.StartInstance(ctx, "clothing-order-process", key, nil)
		suite.Require().NoError(err)
	}

	first, err := suite.store.ClaimDueJobs(ctx, t0, 2, time.Minute)
	suite.Require().NoError(err)
	suite.Len(first, 2)

	second, err := suite.store.ClaimDueJobs(ctx, t0, 10, time.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(second, 1)
	for _, j := range first {
		suite.NotEqual(j.ID, second[0].ID)
	}

	expired, err := suite.store.ClaimDueJobs(ctx, t0.Add(time.Minute), 10, time.Minute)
	suite.Require().NoError(err)
	suite.Len(expired, 3)
}

func (suite *GormStoreIntegrationTestSuite) TestAdvance_StaleJobIsRejected() {
	ctx := context.Background()
	id, err := suite.engine.StartInstance(ctx, "clothing-order-process", "order-6", nil)
	suite.Require().NoError(err)

	jobs, err := suite.store.ClaimDueJobs(ctx, t0, 10, time.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(jobs, 1)

	suite.Require().NoError(suite.engine.TerminateInstance(ctx, id, "cancelled"))

	inst, err := suite.store.GetInstance(ctx, id)
	suite.Require().NoError(err)
	err = suite.store.Advance(ctx, flowengine.Transition{Instance: inst, DoneJobID: jobs[0].ID, At: t0})
	suite.Require().ErrorIs(err, flowengine.ErrStaleTransition)

	suite.Require().ErrorIs(
		suite.store.RescheduleJob(ctx, jobs[0].ID, 1, t0, "boom"),
		flowengine.ErrStaleTransition)
}

func (suite *GormStoreIntegrationTestSuite) TestRescheduleJob_RecordsAttempt() {
	ctx := context.Background()
	_, err := suite.engine.StartInstance(ctx, "food-order-process", "order-7", nil)
	suite.Require().NoError(err)

	jobs, err := suite.store.ClaimDueJobs(ctx, t0, 10, time.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(jobs, 1)

	suite.Require().NoError(suite.store.RescheduleJob(ctx, jobs[0].ID, 1, t0.Add(time.Second), "timeout"))

	none, err := suite.store.ClaimDueJobs(ctx, t0, 10, time.Minute)
	suite.Require().NoError(err)
	suite.Empty(none)

	again, err := suite.store.ClaimDueJobs(ctx, t0.Add(time.Second), 10, time.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(again, 1)
	suite.Equal(1, again[0].Attempts)
	suite.Equal("timeout", again[0].LastError)
}

func TestGormStoreIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GormStoreIntegrationTestSuite))
}
