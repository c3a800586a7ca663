package utils

import (
	"database/sql"
	"log/slog"
	"os"
	"sync"

	"moncal/src-server/calendar"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	When   *when.Parser

	// expanded months, dropped whenever an event is written
	Expansions *calendar.Cache

	MetricChans *Metric

	AppCloseSignalChan chan os.Signal

	shutdownMu            sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{
		AppCloseSignalChan: make(chan os.Signal, 1),
		MetricChans:        NewMetric(),
	}

	// date parser, for the month selector
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	// env
	as.Config = NewConfig()

	var err error
	as.Expansions, err = calendar.NewCache(as.Config.GetExpansionCacheSize())
	if err != nil {
		slog.Error("cannot create expansion cache", "error", err)
		os.Exit(1)
	}

	// database
	dbPath := as.Config.GetDBPath()
	dsn := dbPath + "?mode=rwc"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	as.RawDB, err = sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a different database
		as.RawDB.SetMaxOpenConns(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	return as
}

// CreateGracefulShutdownChan returns a channel that is closed once
// GracefulShutdown runs. Long-running goroutines select on it.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.shutdownMu.Unlock()

	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
