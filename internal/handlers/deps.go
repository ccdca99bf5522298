package handlers

import (
	"github.com/pagewatch-dev/pagewatch/internal/checker"
	"github.com/pagewatch-dev/pagewatch/internal/config"
	"github.com/pagewatch-dev/pagewatch/internal/costmon"
	"github.com/pagewatch-dev/pagewatch/internal/store"
)

// Package-level collaborators, wired once from main.
var (
	cfg         *config.Config
	check       *checker.Checker
	costMonitor *costmon.Monitor
	usageStore  *store.UsageStore
	recordStore *store.RecordStore
	checkStore  *store.CheckStore
)

func Init(c *config.Config, chk *checker.Checker, costs *costmon.Monitor, usage *store.UsageStore, records *store.RecordStore, checks *store.CheckStore) {
	cfg = c
	check = chk
	costMonitor = costs
	usageStore = usage
	recordStore = records
	checkStore = checks
}
