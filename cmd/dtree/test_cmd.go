package main

import (
	"fmt"
	"os"

	dtree "github.com/sonnert/DecisionTree"
	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*ioCmdConfig
	dataInput    string
	testInput    string
	label        string
	featureNames string
	maxDepth     int
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{ioCmdConfig: &ioCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Grow a classification tree from a table of data and test its performance against a testing table`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			trainingTable, err := config.inputTable(config.dataInput, features, "training table")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			label, featureList, err := labelAndFeatures(features, config.label, config.featureNames)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			grower := dtree.New(label, featureList)
			grower.MaxDepth = config.maxDepth
			grower.Log = config
			config.Logf("Growing tree to predict %s ...", label.Name())
			t, err := grower.Grow(config.Context(), trainingTable)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(6)
			}
			if t == nil {
				fmt.Fprintln(os.Stderr, "no tree could be grown from the table")
				os.Exit(7)
			}
			config.Logf("Done")
			testingTable, err := config.inputTable(config.testInput, features, "testing table")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			count, err := testingTable.Count(config.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting testing table rows: %v\n", err)
				os.Exit(9)
			}
			config.Logf("Testing tree against a table with %d rows...", count)
			successRate, errorCount, err := t.Test(config.Context(), testingTable)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
				os.Exit(10)
			}
			config.Logf("Done")
			fmt.Printf("%f success rate, failed to make a prediction for %d rows\n", successRate, errorCount)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.testInput), "test-input", "t", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with the data to test the tree against (required)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the feature the grown tree should predict (required)")
	cmd.PersistentFlags().StringVar(&(config.featureNames), "features", "", "comma-separated names of the features to consider when growing the tree (defaults to all features but the label)")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", dtree.DefaultMaxDepth, "maximum number of features the tree is allowed to ask about before predicting")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveTable), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveTable), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.testInput == "" {
		return fmt.Errorf("required test-input flag was not set")
	}
	if tcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if tcc.cpuIntensiveTable && tcc.memoryIntensiveTable {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	if tcc.maxDepth < 0 {
		return fmt.Errorf("max-depth flag was set to an invalid value: it must be a non-negative integer")
	}
	return nil
}
