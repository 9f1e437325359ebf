package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/sonnert/DecisionTree/table"
	"github.com/sonnert/DecisionTree/table/csv"
	"github.com/sonnert/DecisionTree/table/mongotable"
	"github.com/sonnert/DecisionTree/table/redistable"
	"github.com/sonnert/DecisionTree/table/sqltable"
	"github.com/sonnert/DecisionTree/table/sqltable/pgadapter"
	"github.com/sonnert/DecisionTree/table/sqltable/sqlite3adapter"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
)

type tableCmdConfig struct {
	*ioCmdConfig
	tableInput  string
	tableOutput string
}

type rowWriter interface {
	Write(context.Context, []table.Row) (int, error)
}

type writableTable interface {
	rowWriter
	Flush() error
}

type flushableRowWriter struct {
	rowWriter
}

func tableCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &tableCmdConfig{ioCmdConfig: &ioCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage tables of data",
		Long:  `Manage tables of data`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Context()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Features from metadata read")

			output, err := config.OutputWriter(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}

			inputStream, errStream, err := config.InputStream(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}

			for r := range inputStream {
				_, err = output.Write(config.Context(), []table.Row{r})
				if err != nil {
					cancel := config.ContextCancelFunc()
					cancel()
					break
				}
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			err = <-errStream
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Flushing output table...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.tableInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with the table to read (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.tableOutput), "output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL to dump the output table (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	cmd.AddCommand(splitCmd(rootConfig))
	return cmd
}

func (tcc *tableCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (tcc *tableCmdConfig) OutputWriter(features []*feature.Feature) (writableTable, error) {
	var outputFile *os.File
	var err error
	if tcc.tableOutput != "" {
		if strings.HasPrefix(tcc.tableOutput, "postgresql://") {
			return tcc.postgreSQLOutputWriter(features)
		}
		if strings.HasPrefix(tcc.tableOutput, "mongodb://") {
			return tcc.mongoDBOutputWriter(features)
		}
		if strings.HasPrefix(tcc.tableOutput, "redis://") {
			return tcc.redisOutputWriter(features)
		}
		if strings.HasSuffix(tcc.tableOutput, ".db") {
			return tcc.sqlite3OutputWriter(features)
		}
		tcc.Logf("Creating %s to dump output table...", tcc.tableOutput)
		outputFile, err = os.Create(tcc.tableOutput)
		if err != nil {
			return nil, err
		}
	} else {
		tcc.Logf("Using STDOUT to dump output table...")
		outputFile = os.Stdout
	}
	tcc.Logf("Preparing to write output table...")
	output, err := csv.NewWriter(outputFile, features)
	if err != nil {
		return nil, err
	}
	return output, nil
}

func (tcc *tableCmdConfig) InputStream(features []*feature.Feature) (<-chan table.Row, <-chan error, error) {
	var f *os.File
	if tcc.tableInput == "" {
		tcc.Logf("Reading input table from STDIN and dumping it into output table...")
		f = os.Stdin
	} else {
		if strings.HasPrefix(tcc.tableInput, "postgresql://") {
			return tcc.postgreSQLInputStream(features)
		}
		if strings.HasPrefix(tcc.tableInput, "mongodb://") {
			return tcc.mongoDBInputStream(features)
		}
		if strings.HasPrefix(tcc.tableInput, "redis://") {
			return tcc.redisInputStream(features)
		}
		if strings.HasSuffix(tcc.tableInput, ".db") {
			return tcc.sqlite3InputStream(features)
		}
		tcc.Logf("Opening %s to read input table...", tcc.tableInput)
		var err error
		f, err = os.Open(tcc.tableInput)
		if err != nil {
			err = fmt.Errorf("reading input table from %s: %v", tcc.tableInput, err)
			return nil, nil, err
		}
		tcc.Logf("Dumping input table into output table...")
	}
	rowStream := make(chan table.Row)
	errStream := make(chan error)
	go func() {
		defer f.Close()
		err := csv.ReadTableByRow(f, features, func(i int, r table.Row) (bool, error) {
			select {
			case <-tcc.Context().Done():
				return false, nil
			case rowStream <- r:
			}
			return true, nil
		})
		if err != nil {
			go func() {
				errStream <- err
				close(errStream)
			}()
		} else {
			close(errStream)
		}
		close(rowStream)
	}()
	return rowStream, errStream, nil
}

func (tcc *tableCmdConfig) sqlite3InputStream(features []*feature.Feature) (<-chan table.Row, <-chan error, error) {
	tcc.Logf("Creating SQLite3 adapter for file %s to read input table...", tcc.tableInput)
	adapter, err := sqlite3adapter.New(tcc.tableInput, tcc.maxDBConns)
	if err != nil {
		return nil, nil, err
	}
	tcc.Logf("Opening table over SQLite3 adapter for file %s to read input table...", tcc.tableInput)
	t, err := sqltable.Open(tcc.Context(), adapter, features)
	if err != nil {
		return nil, nil, err
	}
	rowStream, errStream := t.Read(tcc.Context())
	return rowStream, errStream, nil
}

func (tcc *tableCmdConfig) postgreSQLInputStream(features []*feature.Feature) (<-chan table.Row, <-chan error, error) {
	tcc.Logf("Creating PostgreSQL adapter for url %s to read input table...", tcc.tableInput)
	adapter, err := pgadapter.New(tcc.tableInput)
	if err != nil {
		return nil, nil, err
	}
	tcc.Logf("Opening table over PostgreSQL adapter for url %s to read input table...", tcc.tableInput)
	t, err := sqltable.Open(tcc.Context(), adapter, features)
	if err != nil {
		return nil, nil, err
	}
	rowStream, errStream := t.Read(tcc.Context())
	return rowStream, errStream, nil
}

func (tcc *tableCmdConfig) mongoDBInputStream(features []*feature.Feature) (<-chan table.Row, <-chan error, error) {
	tcc.Logf("Dialing MongoDB at %s to read input table...", tcc.tableInput)
	session, err := mgo.Dial(tcc.tableInput)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MongoDB at %s: %v", tcc.tableInput, err)
	}
	tcc.Logf("Opening table over MongoDB session for %s to read input table...", tcc.tableInput)
	t, err := mongotable.Open(tcc.Context(), session, features)
	if err != nil {
		return nil, nil, err
	}
	rowStream, errStream := t.Read(tcc.Context())
	return rowStream, errStream, nil
}

func (tcc *tableCmdConfig) redisInputStream(features []*feature.Feature) (<-chan table.Row, <-chan error, error) {
	tcc.Logf("Connecting to redis at %s to read input table...", tcc.tableInput)
	rc, err := redisClient(tcc.tableInput)
	if err != nil {
		return nil, nil, err
	}
	tcc.Logf("Opening table over redis client for %s to read input table...", tcc.tableInput)
	t := redistable.New(rc, redisTableKeyPrefix, features)
	rowStream, errStream := t.Read(tcc.Context())
	return rowStream, errStream, nil
}

func (tcc *tableCmdConfig) sqlite3OutputWriter(features []*feature.Feature) (writableTable, error) {
	tcc.Logf("Creating SQLite3 adapter for file %s to dump output table...", tcc.tableOutput)
	adapter, err := sqlite3adapter.New(tcc.tableOutput, tcc.maxDBConns)
	if err != nil {
		return nil, err
	}
	tcc.Logf("Creating table over SQLite3 adapter for file %s to dump output table...", tcc.tableOutput)
	t, err := sqltable.Create(tcc.Context(), adapter, features)
	if err != nil {
		return nil, err
	}
	return &flushableRowWriter{t}, nil
}

func (tcc *tableCmdConfig) postgreSQLOutputWriter(features []*feature.Feature) (writableTable, error) {
	tcc.Logf("Creating PostgreSQL adapter for url %s to dump output table...", tcc.tableOutput)
	adapter, err := pgadapter.New(tcc.tableOutput)
	if err != nil {
		return nil, err
	}
	tcc.Logf("Creating table over PostgreSQL adapter for url %s to dump output table...", tcc.tableOutput)
	t, err := sqltable.Create(tcc.Context(), adapter, features)
	if err != nil {
		return nil, err
	}
	return &flushableRowWriter{t}, nil
}

func (tcc *tableCmdConfig) mongoDBOutputWriter(features []*feature.Feature) (writableTable, error) {
	tcc.Logf("Dialing MongoDB at %s to dump output table...", tcc.tableOutput)
	session, err := mgo.Dial(tcc.tableOutput)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB at %s: %v", tcc.tableOutput, err)
	}
	tcc.Logf("Opening table over MongoDB session for %s to dump output table...", tcc.tableOutput)
	t, err := mongotable.Open(tcc.Context(), session, features)
	if err != nil {
		return nil, err
	}
	return &flushableRowWriter{t}, nil
}

func (tcc *tableCmdConfig) redisOutputWriter(features []*feature.Feature) (writableTable, error) {
	tcc.Logf("Connecting to redis at %s to dump output table...", tcc.tableOutput)
	rc, err := redisClient(tcc.tableOutput)
	if err != nil {
		return nil, err
	}
	tcc.Logf("Opening table over redis client for %s to dump output table...", tcc.tableOutput)
	return &flushableRowWriter{redistable.New(rc, redisTableKeyPrefix, features)}, nil
}

func (frw *flushableRowWriter) Flush() error {
	return nil
}
