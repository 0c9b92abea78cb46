package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/phytolab/orderport/config"
	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/remote"
	"github.com/phytolab/orderport/internal/store"
	"github.com/phytolab/orderport/pkg/metrics"
)

type Application struct {
	appConfig  *config.AppConfig
	gormDB     *gorm.DB
	sched      *cron.Cron
	cache      *localcache.Cache
	queue      *remote.Queue
	remoteDB   remote.Client
	stateStore *store.StateStore
	notifier   *notify.Notifier
	receipts   *notify.ReceiptStore
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ NotifierProvider  = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Store() *store.StateStore {
	return a.stateStore
}

func (a *Application) Notifier() *notify.Notifier {
	return a.notifier
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) ReceiptDir() string {
	return a.receipts.Dir()
}

// QueueDepth is the number of write-ahead entries awaiting remote apply.
func (a *Application) QueueDepth() int {
	if a.queue == nil {
		return 0
	}
	return a.queue.Depth()
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// The remote relational store is optional: a misconfigured or absent
	// database leaves the whole session in local-cache-only mode.
	configured := cfg.Database.Configured()
	if configured {
		a.gormDB, err = getDatabase(cfg.Database)
		if err != nil {
			zap.S().Errorf("remote database unreachable, falling back to local cache: %v", err)
			configured = false
			a.gormDB = nil
		}
	} else {
		zap.S().Warn("remote database not configured, local-cache-only mode")
	}

	if configured {
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
		if err := a.MigrateDB(false); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
		// wait for database initialization to complete
		go func() {
			time.Sleep(3 * time.Second)
			a.checkSuper()
			a.checkSettings()
			a.checkProducts()
		}()
	}

	a.cache, err = localcache.Open(cfg.System.Workdir)
	if err != nil {
		panic(err)
	}

	a.remoteDB = remote.NewGormClient(a.gormDB, configured)

	a.queue, err = remote.NewQueue(cfg.System.Workdir, a.remoteDB)
	if err != nil {
		panic(err)
	}

	a.receipts, err = notify.NewReceiptStore(cfg.System.Workdir, cfg.Web.PublicURL)
	if err != nil {
		panic(err)
	}

	a.notifier = notify.NewNotifier(cfg, func() domain.SiteSettings {
		return a.stateStore.Settings()
	}, a.receipts)

	a.stateStore = store.New(a.cache, a.remoteDB, a.queue, a.notifier)
	a.stateStore.Hydrate()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_ = a.stateStore.SyncRemote(ctx)
	}()

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.stateStore != nil {
		a.stateStore.Close()
	}
	if a.queue != nil {
		_ = a.queue.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
