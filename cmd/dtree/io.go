package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
	"github.com/sonnert/DecisionTree/table/csv"
	"github.com/sonnert/DecisionTree/table/mongotable"
	"github.com/sonnert/DecisionTree/table/redistable"
	"github.com/sonnert/DecisionTree/table/sqltable"
	"github.com/sonnert/DecisionTree/table/sqltable/pgadapter"
	"github.com/sonnert/DecisionTree/table/sqltable/sqlite3adapter"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/redis.v5"
)

const redisTableKeyPrefix = "observations"

type ioCmdConfig struct {
	*rootCmdConfig
	metadataInput        string
	maxDBConns           int
	memoryIntensiveTable bool
	cpuIntensiveTable    bool
	ctx                  context.Context
	cancelFunc           context.CancelFunc
}

func (ic *ioCmdConfig) tableGenerator() csv.TableGenerator {
	if ic.memoryIntensiveTable {
		return csv.TableGenerator(table.NewMemoryIntensive)
	}
	if ic.cpuIntensiveTable {
		return csv.TableGenerator(table.NewCPUIntensive)
	}
	return csv.TableGenerator(table.New)
}

func (ic *ioCmdConfig) inputTable(input string, features []*feature.Feature, description string) (table.Table, error) {
	var f *os.File
	if input == "" {
		ic.Logf("Reading %s from STDIN...", description)
		f = os.Stdin
	} else {
		if strings.HasPrefix(input, "postgresql://") {
			return ic.postgreSQLTable(input, features, description)
		}
		if strings.HasPrefix(input, "mongodb://") {
			return ic.mongoDBTable(input, features, description)
		}
		if strings.HasPrefix(input, "redis://") {
			return ic.redisTable(input, features, description)
		}
		if strings.HasSuffix(input, ".db") {
			return ic.sqlite3Table(input, features, description)
		}
		ic.Logf("Opening %s to read %s...", input, description)
		var err error
		f, err = os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("opening %s at %s: %v", description, input, err)
		}
		defer f.Close()
	}
	t, err := csv.ReadTable(f, features, ic.tableGenerator())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", description, err)
	}
	return t, nil
}

func (ic *ioCmdConfig) sqlite3Table(input string, features []*feature.Feature, description string) (table.Table, error) {
	ic.Logf("Creating SQLite3 adapter for file %s to read %s...", input, description)
	adapter, err := sqlite3adapter.New(input, ic.maxDBConns)
	if err != nil {
		return nil, err
	}
	ic.Logf("Opening table over SQLite3 adapter for file %s to read %s...", input, description)
	return sqltable.Open(ic.Context(), adapter, features)
}

func (ic *ioCmdConfig) postgreSQLTable(input string, features []*feature.Feature, description string) (table.Table, error) {
	ic.Logf("Creating PostgreSQL adapter for url %s to read %s...", input, description)
	adapter, err := pgadapter.New(input)
	if err != nil {
		return nil, err
	}
	ic.Logf("Opening table over PostgreSQL adapter for url %s to read %s...", input, description)
	return sqltable.Open(ic.Context(), adapter, features)
}

func (ic *ioCmdConfig) mongoDBTable(input string, features []*feature.Feature, description string) (table.Table, error) {
	ic.Logf("Dialing MongoDB at %s to read %s...", input, description)
	session, err := mgo.Dial(input)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB at %s: %v", input, err)
	}
	ic.Logf("Opening table over MongoDB session for %s to read %s...", input, description)
	return mongotable.Open(ic.Context(), session, features)
}

func (ic *ioCmdConfig) redisTable(input string, features []*feature.Feature, description string) (table.Table, error) {
	ic.Logf("Connecting to redis at %s to read %s...", input, description)
	rc, err := redisClient(input)
	if err != nil {
		return nil, err
	}
	ic.Logf("Opening table over redis client for %s to read %s...", input, description)
	return redistable.New(rc, redisTableKeyPrefix, features), nil
}

func (ic *ioCmdConfig) Context() context.Context {
	ic.setContextAndCancelFunc()
	return ic.ctx
}

func (ic *ioCmdConfig) ContextCancelFunc() context.CancelFunc {
	ic.setContextAndCancelFunc()
	return ic.cancelFunc
}

func (ic *ioCmdConfig) setContextAndCancelFunc() {
	if ic.ctx == nil {
		ic.ctx, ic.cancelFunc = context.WithCancel(context.Background())
	}
}

func redisClient(input string) (*redis.Client, error) {
	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL %s: %v", input, err)
	}
	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}
	if len(u.Path) > 1 {
		db, err := strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL %s: invalid DB number %s", input, u.Path[1:])
		}
		opts.DB = db
	}
	return redis.NewClient(opts), nil
}
