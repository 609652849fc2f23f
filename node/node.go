// Package node is the main service which launches a restaking node and manages
// the lifecycle of all its associated services at runtime, such as the protocol
// service, the operator monitor and metrics, gracefully closing them if the
// process ends.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/restakelabs/restaking/cmd"
	"github.com/restakelabs/restaking/cmd/restaking-node/flags"
	"github.com/restakelabs/restaking/config/features"
	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/custody"
	"github.com/restakelabs/restaking/db"
	"github.com/restakelabs/restaking/db/kv"
	"github.com/restakelabs/restaking/monitor"
	"github.com/restakelabs/restaking/monitoring/backup"
	"github.com/restakelabs/restaking/monitoring/prometheus"
	"github.com/restakelabs/restaking/monitoring/tracing"
	"github.com/restakelabs/restaking/protocol"
	"github.com/restakelabs/restaking/registry"
	"github.com/restakelabs/restaking/runtime"
	"github.com/restakelabs/restaking/runtime/prereqs"
	"github.com/restakelabs/restaking/runtime/version"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

var log = logrus.WithField("prefix", "node")

// RestakingNode defines a struct that handles the services running a restaking
// protocol full node. It handles the lifecycle of the entire system and registers
// services to a service registry.
type RestakingNode struct {
	cliCtx   *cli.Context
	ctx      context.Context
	cancel   context.CancelFunc
	services *runtime.ServiceRegistry
	lock     sync.RWMutex
	stop     chan struct{} // Channel to wait for termination notifications.
	db       db.Database
	registry *registry.Registry
	bank     *custody.InMemoryBank
	ledger   *custody.InMemoryLedger
	clock    *epochs.WallClock
}

// New creates a new node instance, sets up configuration options, and registers
// every required service to the node.
func New(cliCtx *cli.Context) (*RestakingNode, error) {
	if err := tracing.Setup(
		"restaking-node", // service name
		cliCtx.String(cmd.TracingProcessNameFlag.Name),
		cliCtx.String(cmd.TracingEndpointFlag.Name),
		cliCtx.Float64(cmd.TraceSampleFractionFlag.Name),
		cliCtx.Bool(cmd.EnableTracingFlag.Name),
	); err != nil {
		return nil, err
	}

	// Warn if user's platform is not supported
	prereqs.WarnIfPlatformNotSupported(cliCtx.Context)

	features.ConfigureRestakingNode(cliCtx)
	if err := cmd.ConfigureRestakingNode(cliCtx); err != nil {
		return nil, err
	}

	if cmd.Get().MinimalConfig {
		params.UseMinimalConfig()
	}
	if cliCtx.IsSet(cmd.ProtocolConfigFileFlag.Name) {
		params.LoadProtocolConfigFile(cliCtx.String(cmd.ProtocolConfigFileFlag.Name))
	}

	svcRegistry := runtime.NewServiceRegistry()

	ctx, cancel := context.WithCancel(cliCtx.Context)
	node := &RestakingNode{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: svcRegistry,
		stop:     make(chan struct{}),
		registry: registry.New(),
		bank:     custody.NewInMemoryBank(),
		ledger:   custody.NewInMemoryLedger(),
	}

	if err := node.startDB(cliCtx); err != nil {
		return nil, err
	}

	if err := node.registerProtocolService(); err != nil {
		return nil, err
	}

	if err := node.registerMonitorService(cliCtx); err != nil {
		return nil, err
	}

	if !cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		if err := node.registerPrometheusService(cliCtx); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// Start the RestakingNode and kicks off every registered service.
func (r *RestakingNode) Start() {
	r.lock.Lock()

	log.WithFields(logrus.Fields{
		"version": version.Version(),
	}).Info("Starting restaking node")

	r.services.StartAll()

	stop := r.stop
	r.lock.Unlock()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go r.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the restaking node")
	}()

	// Wait for stop channel to be closed.
	<-stop
}

// Close handles graceful shutdown of the system.
func (r *RestakingNode) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()

	log.Info("Stopping restaking node")
	r.services.StopAll()
	if err := r.db.Close(); err != nil {
		log.Errorf("Failed to close database: %v", err)
	}
	r.cancel()
	close(r.stop)
}

func (r *RestakingNode) startDB(cliCtx *cli.Context) error {
	baseDir := cliCtx.String(cmd.DataDirFlag.Name)
	dbPath := filepath.Join(baseDir, kv.RestakingNodeDbDirName)
	clearDB := cliCtx.Bool(cmd.ClearDB.Name)
	forceClearDB := cliCtx.Bool(cmd.ForceClearDB.Name)

	log.WithField("database-path", dbPath).Info("Checking DB")

	dbConfig := &kv.Config{
		DisableVaultCache: features.Get().DisableVaultCache,
		InitialMMapSize:   cliCtx.Int(cmd.BoltMMapInitialSizeFlag.Name),
	}
	d, err := db.NewDB(dbPath, dbConfig)
	if err != nil {
		return err
	}
	clearDBConfirmed := false
	if clearDB && !forceClearDB {
		actionText := "This will delete your restaking database stored in your data directory. " +
			"Your database backups will not be removed - do you want to proceed? (Y/N)"
		deniedText := "Database will not be deleted. No changes have been made."
		clearDBConfirmed, err = cmd.ConfirmAction(actionText, deniedText)
		if err != nil {
			return err
		}
	}
	if clearDBConfirmed || forceClearDB {
		log.Warning("Removing database")
		if err := d.Close(); err != nil {
			return errors.Wrap(err, "could not close db prior to clearing")
		}
		if err := d.ClearDB(); err != nil {
			return errors.Wrap(err, "could not clear database")
		}
		d, err = db.NewDB(dbPath, dbConfig)
		if err != nil {
			return errors.Wrap(err, "could not create new database")
		}
	}
	r.db = d

	return r.startClock(cliCtx)
}

// startClock anchors the epoch clock. A fresh data directory is stamped
// with its genesis time and config name; a restart validates both so a
// database cannot silently switch protocol parameters.
func (r *RestakingNode) startClock(cliCtx *cli.Context) error {
	cfg := params.RestakingConfig()
	genesisTime, storedConfig, err := r.db.GenesisData(r.ctx)
	if err != nil {
		return errors.Wrap(err, "could not read genesis data")
	}
	if genesisTime == 0 {
		genesisTime = cliCtx.Uint64(flags.GenesisTimeFlag.Name)
		if genesisTime == 0 {
			genesisTime = uint64(time.Now().Unix()) + cfg.GenesisDelay
		}
		if err := r.db.SaveGenesisData(r.ctx, genesisTime, cfg.ConfigName); err != nil {
			return errors.Wrap(err, "could not persist genesis data")
		}
		log.WithFields(logrus.Fields{
			"genesisTime": time.Unix(int64(genesisTime), 0),
			"config":      cfg.ConfigName,
		}).Info("Initialized new data directory")
	} else {
		if storedConfig != cfg.ConfigName {
			return fmt.Errorf("database config is %q but tried to run with %q. This likely means "+
				"you are trying to run on different protocol parameters than what the database contains. "+
				"You can run once with '--clear-db' to wipe the old database or use an alternative data "+
				"directory with '--datadir'", storedConfig, cfg.ConfigName)
		}
		if requested := cliCtx.Uint64(flags.GenesisTimeFlag.Name); requested != 0 && requested != genesisTime {
			return fmt.Errorf("database genesis time is %d but --%s requested %d",
				genesisTime, flags.GenesisTimeFlag.Name, requested)
		}
	}
	r.clock = epochs.NewWallClock(time.Unix(int64(genesisTime), 0))

	// Pending cooldowns and tickets keep the maturity epochs they were
	// created with, so a window change only affects new requests.
	rec, err := r.db.ProtocolRecord(r.ctx)
	if err != nil {
		return errors.Wrap(err, "could not read protocol record")
	}
	if rec != nil && (rec.CooldownEpochs != cfg.CooldownEpochs || rec.WithdrawalEpochs != cfg.WithdrawalEpochs) {
		log.WithFields(logrus.Fields{
			"storedCooldownEpochs":   rec.CooldownEpochs,
			"cooldownEpochs":         cfg.CooldownEpochs,
			"storedWithdrawalEpochs": rec.WithdrawalEpochs,
			"withdrawalEpochs":       cfg.WithdrawalEpochs,
		}).Warn("Security windows differ from the previous run")
	}
	return nil
}

func (r *RestakingNode) registerProtocolService() error {
	svc, err := protocol.NewService(r.ctx, &protocol.Config{
		Database: r.db,
		Registry: r.registry,
		Bank:     r.bank,
		Ledger:   r.ledger,
		Clock:    r.clock,
	})
	if err != nil {
		return errors.Wrap(err, "could not register protocol service")
	}
	return r.services.RegisterService(svc)
}

func (r *RestakingNode) registerMonitorService(cliCtx *cli.Context) error {
	if !cliCtx.IsSet(flags.TrackedOperatorsFlag.Name) {
		return nil
	}
	var tracked []types.OperatorID
	for _, raw := range cliCtx.StringSlice(flags.TrackedOperatorsFlag.Name) {
		var id types.OperatorID
		if err := id.UnmarshalText([]byte(strings.TrimPrefix(raw, "0x"))); err != nil {
			return errors.Wrapf(err, "invalid %s value %q", flags.TrackedOperatorsFlag.Name, raw)
		}
		tracked = append(tracked, id)
	}

	var protocolService *protocol.Service
	if err := r.services.FetchService(&protocolService); err != nil {
		return err
	}
	svc, err := monitor.NewService(r.ctx, &monitor.Config{
		OperationNotifier: protocolService,
		Clock:             r.clock,
		Ticker:            epochs.NewEpochTicker(r.clock.GenesisTime(), params.RestakingConfig().SecondsPerEpoch),
	}, tracked)
	if err != nil {
		return errors.Wrap(err, "could not register monitor service")
	}
	return r.services.RegisterService(svc)
}

func (r *RestakingNode) registerPrometheusService(cliCtx *cli.Context) error {
	var additionalHandlers []prometheus.Handler
	if cliCtx.IsSet(cmd.EnableBackupWebhookFlag.Name) {
		additionalHandlers = append(
			additionalHandlers,
			prometheus.Handler{
				Path:    "/db/backup",
				Handler: backup.Handler(r.db, cliCtx.String(cmd.BackupWebhookOutputDir.Name)),
			},
		)
	}

	service := prometheus.NewService(
		fmt.Sprintf("%s:%d", cliCtx.String(cmd.MonitoringHostFlag.Name), cliCtx.Int(flags.MonitoringPortFlag.Name)),
		r.services,
		additionalHandlers...,
	)
	hook := prometheus.NewLogrusCollector()
	logrus.AddHook(hook)
	return r.services.RegisterService(service)
}
