package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Config holds Temporal client configuration
type Config struct {
	HostPort  string
	Namespace string
	Identity  string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HostPort:  "localhost:7233",
		Namespace: "default",
		Identity:  "mes-production-worker",
	}
}

// TaskQueues contains the production Temporal task queue names
var TaskQueues = struct {
	Production string
	Materials  string
}{
	Production: "production-queue",
	Materials:  "materials-queue",
}

// WorkflowNames contains the production workflow names
var WorkflowNames = struct {
	MaterialResync string
}{
	MaterialResync: "MaterialResyncWorkflow",
}

// Client wraps the Temporal client
type Client struct {
	client client.Client
	config *Config
}

// NewClient creates a new Temporal client
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  config.HostPort,
		Namespace: config.Namespace,
		Identity:  config.Identity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}

	return &Client{
		client: c,
		config: config,
	}, nil
}

// Client returns the underlying Temporal client
func (c *Client) Client() client.Client {
	return c.client
}

// Close closes the client connection
func (c *Client) Close() {
	c.client.Close()
}

// StartWorkflow starts a workflow execution
func (c *Client) StartWorkflow(
	ctx context.Context,
	workflowID string,
	taskQueue string,
	workflowName string,
	args ...interface{},
) (client.WorkflowRun, error) {
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: taskQueue,
	}

	return c.client.ExecuteWorkflow(ctx, options, workflowName, args...)
}

// WorkerOptions contains options for creating a worker
type WorkerOptions struct {
	TaskQueue                    string
	MaxConcurrentActivityPollers int
	MaxConcurrentWorkflowPollers int
	MaxConcurrentActivities      int
	MaxConcurrentWorkflows       int
}

// DefaultWorkerOptions returns default worker options
func DefaultWorkerOptions(taskQueue string) *WorkerOptions {
	return &WorkerOptions{
		TaskQueue:                    taskQueue,
		MaxConcurrentActivityPollers: 4,
		MaxConcurrentWorkflowPollers: 4,
		MaxConcurrentActivities:      100,
		MaxConcurrentWorkflows:       100,
	}
}

// NewWorker creates a new Temporal worker
func (c *Client) NewWorker(opts *WorkerOptions) worker.Worker {
	workerOpts := worker.Options{
		MaxConcurrentActivityExecutionSize:     opts.MaxConcurrentActivities,
		MaxConcurrentWorkflowTaskExecutionSize: opts.MaxConcurrentWorkflows,
		MaxConcurrentActivityTaskPollers:       opts.MaxConcurrentActivityPollers,
		MaxConcurrentWorkflowTaskPollers:       opts.MaxConcurrentWorkflowPollers,
	}

	return worker.New(c.client, opts.TaskQueue, workerOpts)
}

// ActivityDefaults holds the default activity timeouts used by workflows
type ActivityDefaults struct {
	StartToCloseTimeout time.Duration
	MaximumAttempts     int32
}

// DefaultActivityDefaults returns the standard activity settings
func DefaultActivityDefaults() ActivityDefaults {
	return ActivityDefaults{
		StartToCloseTimeout: 5 * time.Minute,
		MaximumAttempts:     3,
	}
}
