// Package monitor defines a node service that subscribes to the
// protocol operation feed and follows the activity of a configured set
// of operators, reporting logs and metrics of their delegations and
// slashes throughout their lifetime.
package monitor

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

// Buffered so a burst of operations does not stall the publisher.
const operationChannelSize = 64

// OperatorLatestActivity keeps track of the latest observed delegation
// and slashing activity of a tracked operator.
type OperatorLatestActivity struct {
	delegatedAmount uint64
	coolingAmount   uint64
	slashedEpoch    types.Epoch
	slashedAmount   uint64
}

// OperatorAggregatedPerformance keeps track of the accumulated activity
// of a tracked operator since the monitor started.
type OperatorAggregatedPerformance struct {
	startEpoch           types.Epoch
	totalDelegatedAmount uint64
	totalCooldownCount   uint64
	totalSlashCount      uint64
	totalSlashedAmount   uint64
	totalPartialSlashes  uint64
}

// Config contains the operation feed notifier the monitor subscribes to
// and the clock its reports are stamped with.
type Config struct {
	OperationNotifier operation.Notifier
	Clock             epochs.Clock
	// Ticker is optional. When set, the monitor reports the aggregated
	// performance of every tracked operator at each epoch transition.
	Ticker epochs.Ticker
}

// Service tracks operators and reports logs and metrics of their
// delegations and slashes.
type Service struct {
	config    *Config
	ctx       context.Context
	cancel    context.CancelFunc
	isLogging bool

	// Locks access to TrackedOperators, latestActivity and
	// aggregatedPerformance.
	sync.RWMutex

	TrackedOperators      map[types.OperatorID]bool
	latestActivity        map[types.OperatorID]OperatorLatestActivity
	aggregatedPerformance map[types.OperatorID]OperatorAggregatedPerformance
}

// NewService sets up a new operator monitor instance when given a list
// of operator ids to track.
func NewService(ctx context.Context, config *Config, tracked []types.OperatorID) (*Service, error) {
	if config == nil || config.OperationNotifier == nil {
		return nil, errors.New("nil operation notifier")
	}
	if config.Clock == nil {
		return nil, errors.New("nil clock")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		config:                config,
		ctx:                   ctx,
		cancel:                cancel,
		TrackedOperators:      make(map[types.OperatorID]bool, len(tracked)),
		latestActivity:        make(map[types.OperatorID]OperatorLatestActivity),
		aggregatedPerformance: make(map[types.OperatorID]OperatorAggregatedPerformance),
	}
	for _, id := range tracked {
		s.TrackedOperators[id] = true
	}
	return s, nil
}

// Start subscribes to the operation feed and begins reporting.
func (s *Service) Start() {
	s.Lock()
	defer s.Unlock()

	tracked := make([]types.OperatorID, 0, len(s.TrackedOperators))
	for id := range s.TrackedOperators {
		tracked = append(tracked, id)
	}
	sort.Slice(tracked, func(i, j int) bool {
		return bytes.Compare(tracked[i][:], tracked[j][:]) < 0
	})
	log.WithFields(logrus.Fields{
		"Operators": tracked,
	}).Info("Starting service")

	start := s.config.Clock.CurrentEpoch()
	for id := range s.TrackedOperators {
		s.latestActivity[id] = OperatorLatestActivity{}
		s.aggregatedPerformance[id] = OperatorAggregatedPerformance{startEpoch: start}
	}
	s.isLogging = true

	opChannel := make(chan *feed.Event, operationChannelSize)
	opSub := s.config.OperationNotifier.OperationFeed().Subscribe(opChannel)
	go s.monitorRoutine(opChannel, opSub)
}

// Status retrieves the status of the service.
func (s *Service) Status() error {
	s.RLock()
	defer s.RUnlock()
	if s.isLogging {
		return nil
	}
	return errors.New("not running")
}

// Stop stops the service.
func (s *Service) Stop() error {
	defer s.cancel()
	s.Lock()
	defer s.Unlock()
	if s.config.Ticker != nil {
		s.config.Ticker.Done()
	}
	s.isLogging = false
	return nil
}

// monitorRoutine is the main dispatcher. It receives operation feed
// events and calls the appropriate processor for each event type.
func (s *Service) monitorRoutine(opChannel chan *feed.Event, opSub event.Subscription) {
	defer opSub.Unsubscribe()

	// A nil ticker channel blocks forever, which disables the branch.
	var epochChannel <-chan types.Epoch
	if s.config.Ticker != nil {
		epochChannel = s.config.Ticker.C()
	}

	for {
		select {
		case epoch := <-epochChannel:
			s.processEpochTransition(epoch)
		case ev := <-opChannel:
			switch ev.Type {
			case operation.StakeDelegated:
				data, ok := ev.Data.(*operation.StakeDelegatedData)
				if !ok {
					log.Error("Event feed data is not of type *operation.StakeDelegatedData")
				} else {
					s.processDelegation(data)
				}
			case operation.CooldownStarted:
				data, ok := ev.Data.(*operation.CooldownStartedData)
				if !ok {
					log.Error("Event feed data is not of type *operation.CooldownStartedData")
				} else {
					s.processCooldownStart(data)
				}
			case operation.CooldownCompleted:
				data, ok := ev.Data.(*operation.CooldownCompletedData)
				if !ok {
					log.Error("Event feed data is not of type *operation.CooldownCompletedData")
				} else {
					s.processCooldownComplete(data)
				}
			case operation.SlashApplied:
				data, ok := ev.Data.(*operation.SlashAppliedData)
				if !ok {
					log.Error("Event feed data is not of type *operation.SlashAppliedData")
				} else {
					s.processSlash(data)
				}
			case operation.VaultHalted:
				data, ok := ev.Data.(*operation.VaultHaltedData)
				if !ok {
					log.Error("Event feed data is not of type *operation.VaultHaltedData")
				} else {
					s.processHalt(data)
				}
			}
		case <-s.ctx.Done():
			log.Debug("Context closed, exiting goroutine")
			return
		case err := <-opSub.Err():
			log.WithError(err).Error("Could not subscribe to operation notifier")
			return
		}
	}
}

// trackedOperator returns if the given operator id corresponds to one of
// the operators we follow. It assumes the caller holds the service Lock.
func (s *Service) trackedOperator(id types.OperatorID) bool {
	_, ok := s.TrackedOperators[id]
	return ok
}
