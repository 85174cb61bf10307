package sync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibertrade/fmbridge/internal/config"
)

// Service is the background sync driver: authenticate once, then pull
// and push on a fixed interval. Runs never overlap; a tick that
// arrives while a run is in flight is dropped.
type Service struct {
	api          RemoteAPI
	puller       *Puller
	pusher       *Pusher
	importer     *Importer
	bootstrapper *Bootstrapper
	interval     time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewService wires the full sync engine on top of a record store and
// an API client.
func NewService(api RemoteAPI, rs RecordStore, cfg config.ForceManagerConfig) *Service {
	mapper := NewMapper(rs, cfg)
	fulfiller := NewFulfiller(rs)
	return &Service{
		api:          api,
		puller:       NewPuller(api, rs, mapper, fulfiller),
		pusher:       NewPusher(api, rs, mapper),
		importer:     NewImporter(api, rs, mapper),
		bootstrapper: NewBootstrapper(api, rs, mapper),
		interval:     time.Duration(cfg.SyncInterval) * time.Minute,
	}
}

// Start launches the background loop. Safe to call once.
func (s *Service) Start() {
	s.mu.Lock()
	if s.stopChan != nil {
		s.mu.Unlock()
		return
	}
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	log.Printf("🔄 sync service started (interval %s)", s.interval)
	go s.loop()
}

// Stop shuts the loop down and waits for an in-flight run to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	stop, done := s.stopChan, s.doneChan
	s.stopChan = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	log.Println("🛑 sync service stopped")
}

func (s *Service) loop() {
	defer close(s.doneChan)

	s.api.Authenticate(context.Background())
	s.RunOnce(context.Background())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce executes one full pull+push cycle. Overlapping calls are
// rejected; the engine assumes a single active run.
func (s *Service) RunOnce(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("⚠️ sync run skipped: previous run still in flight")
		return false
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runID := uuid.NewString()[:8]
	started := time.Now()
	log.Printf("🔄 sync run %s started", runID)

	s.puller.Run(ctx)
	s.pusher.Run(ctx)

	log.Printf("✅ sync run %s finished in %s", runID, time.Since(started).Round(time.Millisecond))
	return true
}

// Pull runs the remote-to-local direction once.
func (s *Service) Pull(ctx context.Context) { s.puller.Run(ctx) }

// Push runs the local-to-remote direction once.
func (s *Service) Push(ctx context.Context) { s.pusher.Run(ctx) }

// Import runs the one-shot initial load.
func (s *Service) Import(ctx context.Context) { s.importer.Run(ctx) }

// Bootstrap aligns countries and categories with the remote.
func (s *Service) Bootstrap(ctx context.Context) { s.bootstrapper.Run(ctx) }
