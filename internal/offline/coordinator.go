package offline

import (
	"context"
	"net/url"
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
)

const INBOX_SIZE = 64

type Options struct {
	Origin      *url.URL
	SkipWaiting bool
	Now         func() time.Time
}

type dependencies struct {
	origin        *url.URL
	storage       Storage
	fetcher       Fetcher
	notifications *NotificationCenter
	metrics       *Metrics
	now           func() time.Time
}

// registry is the lifecycle state owned by the coordinator goroutine.
type registry struct {
	installing *Worker
	waiting    *Worker
	active     *Worker
	clients    map[string]*Worker
}

func (r *registry) controlledBy(worker *Worker) int {
	count := 0
	for _, controller := range r.clients {
		if controller == worker {
			count++
		}
	}
	return count
}

type command func(*registry)

// Coordinator owns every worker version and every connected client. All
// lifecycle state changes run on its own goroutine; fetch and sync events
// are dispatched to the active worker and run on the caller's goroutine.
type Coordinator struct {
	deps        dependencies
	skipWaiting bool
	inbox       chan command
	stop        chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
	log         logger.Logger
}

func NewCoordinator(
	storage Storage,
	fetcher Fetcher,
	notifications *NotificationCenter,
	metrics *Metrics,
	options Options,
) *Coordinator {
	if options.Now == nil {
		options.Now = time.Now
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	c := &Coordinator{
		deps: dependencies{
			origin:        options.Origin,
			storage:       storage,
			fetcher:       fetcher,
			notifications: notifications,
			metrics:       metrics,
			now:           options.Now,
		},
		skipWaiting: options.SkipWaiting,
		inbox:       make(chan command, INBOX_SIZE),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		log:         logger.New("offline").File("coordinator"),
	}

	go c.run()
	return c
}

func (c *Coordinator) run() {
	state := &registry{clients: make(map[string]*Worker)}
	defer close(c.done)

	for {
		select {
		case cmd := <-c.inbox:
			cmd(state)
		case <-c.stop:
			return
		}
	}
}

// Stop ends the coordinator goroutine. Later calls return ErrStopped.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// do runs fn on the coordinator goroutine and waits for it to finish.
func (c *Coordinator) do(ctx context.Context, fn command) error {
	finished := make(chan struct{})
	wrapped := func(r *registry) {
		defer close(finished)
		fn(r)
	}

	select {
	case c.inbox <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

type WorkerStatus struct {
	Version     string   `json:"version"`
	State       State    `json:"state"`
	Generations []string `json:"generations"`
	Clients     int      `json:"clients"`
}

type Status struct {
	Active      *WorkerStatus `json:"active,omitempty"`
	Waiting     *WorkerStatus `json:"waiting,omitempty"`
	Installing  *WorkerStatus `json:"installing,omitempty"`
	Clients     int           `json:"clients"`
	SkipWaiting bool          `json:"skipWaiting"`
	Storage     string        `json:"storage"`
}

func (c *Coordinator) status(r *registry) Status {
	describe := func(worker *Worker) *WorkerStatus {
		if worker == nil {
			return nil
		}
		return &WorkerStatus{
			Version:     worker.version,
			State:       worker.State(),
			Generations: worker.Generations(),
			Clients:     r.controlledBy(worker),
		}
	}

	return Status{
		Active:      describe(r.active),
		Waiting:     describe(r.waiting),
		Installing:  describe(r.installing),
		Clients:     len(r.clients),
		SkipWaiting: c.skipWaiting,
		Storage:     c.deps.storage.Name(),
	}
}

func (c *Coordinator) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.do(ctx, func(r *registry) {
		status = c.status(r)
	})
	return status, err
}

// Register installs version and moves it towards active. Registering the
// version that is already active or waiting is a no-op.
func (c *Coordinator) Register(ctx context.Context, version string) (Status, error) {
	log := c.log.TraceFromContext(ctx).Function("Register")

	var (
		worker *Worker
		status Status
	)
	err := c.do(ctx, func(r *registry) {
		for _, existing := range []*Worker{r.active, r.waiting, r.installing} {
			if existing != nil && existing.version == version {
				status = c.status(r)
				return
			}
		}

		if r.installing != nil {
			r.installing.setState(StateRedundant)
		}
		worker = newWorker(version, c.deps)
		worker.setState(StateInstalling)
		r.installing = worker
	})
	if err != nil || worker == nil {
		return status, err
	}

	log.Info("Installing worker", "version", version)
	if _, err := worker.Install(ctx); err != nil {
		_ = c.do(context.WithoutCancel(ctx), func(r *registry) {
			worker.setState(StateRedundant)
			if r.installing == worker {
				r.installing = nil
			}
		})
		return Status{}, log.Err("worker install failed", err, "version", version)
	}

	err = c.do(context.WithoutCancel(ctx), func(r *registry) {
		if r.installing != worker {
			status = c.status(r)
			return
		}
		r.installing = nil
		worker.setState(StateInstalled)

		if r.waiting != nil {
			r.waiting.setState(StateRedundant)
		}
		r.waiting = worker

		c.promote(ctx, r)
		status = c.status(r)
	})
	return status, err
}

// promote activates the waiting worker once nothing holds the active one.
func (c *Coordinator) promote(ctx context.Context, r *registry) {
	log := c.log.TraceFromContext(ctx).Function("promote")

	next := r.waiting
	if next == nil {
		return
	}

	if r.active != nil && !c.skipWaiting && r.controlledBy(r.active) > 0 {
		log.Info("Worker waiting for clients to release the active version",
			"version", next.version,
			"active", r.active.version,
			"clients", r.controlledBy(r.active),
		)
		return
	}

	r.waiting = nil
	next.setState(StateActivating)

	// A newer worker may be precaching while this one activates.
	var keep []string
	if r.installing != nil {
		keep = r.installing.Generations()
	}

	if _, err := next.Activate(ctx, keep...); err != nil {
		log.Er("activation failed, keeping the current worker", err, "version", next.version)
		next.setState(StateRedundant)
		return
	}

	if r.active != nil {
		r.active.setState(StateRedundant)
	}
	r.active = next
	next.setState(StateActive)
	c.deps.metrics.Activations.Inc()

	for clientID := range r.clients {
		r.clients[clientID] = next
	}

	log.Info("Worker activated", "version", next.version, "claimed", len(r.clients))
}

// Connect records a client and returns the version that controls it, or
// "" when no worker is active yet.
func (c *Coordinator) Connect(ctx context.Context, clientID string) (string, error) {
	var version string
	err := c.do(ctx, func(r *registry) {
		r.clients[clientID] = r.active
		if r.active != nil {
			version = r.active.version
		}
	})
	return version, err
}

// Disconnect releases a client. The last client of the active version lets
// a waiting worker activate.
func (c *Coordinator) Disconnect(ctx context.Context, clientID string) error {
	return c.do(ctx, func(r *registry) {
		delete(r.clients, clientID)
		c.promote(ctx, r)
	})
}

func (c *Coordinator) activeWorker(ctx context.Context) (*Worker, error) {
	var worker *Worker
	err := c.do(ctx, func(r *registry) {
		worker = r.active
	})
	return worker, err
}

// Fetch dispatches an intercepted request. Without an active worker the
// request is not controlled and goes to the network.
func (c *Coordinator) Fetch(ctx context.Context, request Request) (Response, error) {
	worker, err := c.activeWorker(ctx)
	if err != nil {
		return Response{}, err
	}

	if worker == nil {
		return c.deps.fetcher.Fetch(ctx, request)
	}
	return worker.HandleFetch(ctx, request)
}

func (c *Coordinator) Push(ctx context.Context, payload string) (Notification, error) {
	var (
		notification Notification
		missing      bool
	)
	err := c.do(ctx, func(r *registry) {
		if r.active == nil {
			missing = true
			return
		}
		notification = r.active.HandlePush(payload)
	})
	if err == nil && missing {
		err = ErrNoActiveWorker
	}
	return notification, err
}

func (c *Coordinator) NotificationClick(ctx context.Context, tag, action string) (ClickResult, error) {
	var (
		result  ClickResult
		missing bool
	)
	err := c.do(ctx, func(r *registry) {
		if r.active == nil {
			missing = true
			return
		}
		result = r.active.HandleNotificationClick(tag, action)
	})
	if err == nil && missing {
		err = ErrNoActiveWorker
	}
	return result, err
}

// Sync runs a tagged sync on the active worker. Failures are logged and
// returned, never retried.
func (c *Coordinator) Sync(ctx context.Context, tag string) error {
	worker, err := c.activeWorker(ctx)
	if err != nil {
		return err
	}
	if worker == nil {
		return ErrNoActiveWorker
	}
	return worker.HandleSync(ctx, tag)
}

// Generations lists the stored cache generation names.
func (c *Coordinator) Generations(ctx context.Context) ([]string, error) {
	return c.deps.storage.Names(ctx)
}
