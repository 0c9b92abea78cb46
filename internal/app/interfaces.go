package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/phytolab/orderport/config"
	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/store"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the state store
type StoreProvider interface {
	Store() *store.StateStore
}

// NotifierProvider provides the notification dispatcher
type NotifierProvider interface {
	Notifier() *notify.Notifier
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	NotifierProvider
	SchedulerProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// ReceiptDir is the directory generated receipts are served from
	ReceiptDir() string
	// QueueDepth is the number of pending write-ahead entries
	QueueDepth() int
}
