package main

import (
	"fmt"
	"os"

	dtree "github.com/sonnert/DecisionTree"
	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/sonnert/DecisionTree/table/inputrow"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*ioCmdConfig
	dataInput      string
	label          string
	featureNames   string
	maxDepth       int
	undefinedValue string
}

type stdoutFeatureValueRequester string

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{ioCmdConfig: &ioCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a label for a row answering questions",
		Long:  `Grow a classification tree from a table of data and use it to predict the label value for a row answering a reduced set of questions about its features`,
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
			row := inputrow.New(os.Stdin, featureList, stdoutFeatureValueRequester(config.undefinedValue), config.undefinedValue)
			prediction, err := t.Predict(config.Context(), row)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			fmt.Printf("Predicted %s is %v\n", label.Name(), prediction)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the feature the grown tree should predict (required)")
	cmd.PersistentFlags().StringVar(&(config.featureNames), "features", "", "comma-separated names of the features to consider when growing the tree (defaults to all features but the label)")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", dtree.DefaultMaxDepth, "maximum number of features the tree is allowed to ask about before predicting")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveTable), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveTable), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	cmd.PersistentFlags().StringVarP(&(config.undefinedValue), "undefined-value", "u", "?", "value to input to define a row's value for a feature as undefined")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if pcc.cpuIntensiveTable && pcc.memoryIntensiveTable {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	if pcc.maxDepth < 0 {
		return fmt.Errorf("max-depth flag was set to an invalid value: it must be a non-negative integer")
	}
	return nil
}

func (sfvr stdoutFeatureValueRequester) RequestValueFor(f *feature.Feature) error {
	fmt.Printf("Please provide the row's %s:\n(valid values are %v or %s if undefined)\n", f.Name(), f.Values(), string(sfvr))
	return nil
}

func (sfvr stdoutFeatureValueRequester) RejectValueFor(f *feature.Feature, value interface{}) error {
	fmt.Printf("%v is not a valid value for the row's %s. Please provide one of %v or %s if undefined.\n", value, f.Name(), f.Values(), string(sfvr))
	return nil
}
