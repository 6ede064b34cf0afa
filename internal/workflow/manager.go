package workflow

import (
	"log/slog"
	"sync"
	"time"

	"redraft/internal/config"
	"redraft/internal/observability"
	"redraft/internal/queue"
	"redraft/internal/stage"
)

// Manager coordinates job processing using registered stage handlers. A pool
// of identical workers polls the queue; each worker claims a job with a
// compare-and-swap transition so no job is ever executed twice.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	workers      int

	heartbeat *HeartbeatMonitor
	retention *RetentionSweeper
	metrics   *observability.Metrics

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	statusOrder  []queue.Status

	mu      sync.RWMutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// StageSet bundles the concrete handlers the manager orchestrates.
type StageSet struct {
	Transformer stage.Handler
	Publisher   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// NewManager constructs a workflow manager wired with the supplied stages.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet) *Manager {
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		workers:      cfg.Workflow.TransformWorkers,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		retention: NewRetentionSweeper(cfg, store, logger),
	}
	m.configureStages(stages)
	return m
}

// SetMetrics attaches an instrumentation sink. A nil manager metrics field is
// tolerated everywhere, so attaching is optional.
func (m *Manager) SetMetrics(metrics *observability.Metrics) {
	m.metrics = metrics
}

func (m *Manager) configureStages(stages StageSet) {
	m.stages = []pipelineStage{
		{
			name:             "transform",
			handler:          stages.Transformer,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusTransforming,
			doneStatus:       queue.StatusTransformed,
		},
		{
			name:             "publish",
			handler:          stages.Publisher,
			startStatus:      queue.StatusTransformed,
			processingStatus: queue.StatusPublishing,
			doneStatus:       queue.StatusCompleted,
		},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.statusOrder = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}
