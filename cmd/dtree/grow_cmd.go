package main

import (
	"fmt"
	"os"
	"strings"

	dtree "github.com/sonnert/DecisionTree"
	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/sonnert/DecisionTree/tree"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*ioCmdConfig
	dataInput    string
	output       string
	label        string
	featureNames string
	maxDepth     int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{ioCmdConfig: &ioCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a table of data",
		Long:  `Grow a classification tree from a table of data to predict a certain feature.`,
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
			count, err := trainingTable.Count(config.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting training table rows: %v\n", err)
				os.Exit(6)
			}
			grower := dtree.New(label, featureList)
			grower.MaxDepth = config.maxDepth
			grower.Log = config
			config.Logf("Growing tree from a table with %d rows and %d features to predict %s ...", count, len(featureList), label.Name())
			t, err := grower.Grow(config.Context(), trainingTable)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(7)
			}
			if t == nil {
				fmt.Fprintln(os.Stderr, "no tree could be grown from the table")
				os.Exit(8)
			}
			config.Logf("Done")
			err = outputTree(config.output, t)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the grown tree will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the feature the grown tree should predict (required)")
	cmd.PersistentFlags().StringVar(&(config.featureNames), "features", "", "comma-separated names of the features to consider when growing the tree (defaults to all features but the label)")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", dtree.DefaultMaxDepth, "maximum number of features the tree is allowed to ask about before predicting")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveTable), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveTable), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if gcc.cpuIntensiveTable && gcc.memoryIntensiveTable {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	if gcc.maxDepth < 0 {
		return fmt.Errorf("max-depth flag was set to an invalid value: it must be a non-negative integer")
	}
	return nil
}

func outputTree(outputPath string, t *tree.Tree) error {
	var f *os.File
	var err error
	if outputPath == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(outputPath)
		if err != nil {
			return err
		}
	}
	defer f.Close()
	_, err = fmt.Fprint(f, t)
	return err
}

func labelAndFeatures(features []*feature.Feature, labelName, featureNames string) (*feature.Feature, []*feature.Feature, error) {
	var label *feature.Feature
	for _, f := range features {
		if f.Name() == labelName {
			label = f
			break
		}
	}
	if label == nil {
		return nil, nil, fmt.Errorf("label feature '%s' is not defined", labelName)
	}
	var featureList []*feature.Feature
	if featureNames == "" {
		for _, f := range features {
			if f != label {
				featureList = append(featureList, f)
			}
		}
		return label, featureList, nil
	}
	featuresByName := make(map[string]*feature.Feature)
	for _, f := range features {
		featuresByName[f.Name()] = f
	}
	for _, name := range strings.Split(featureNames, ",") {
		name = strings.TrimSpace(name)
		f, ok := featuresByName[name]
		if !ok {
			return nil, nil, fmt.Errorf("feature '%s' is not defined", name)
		}
		if f == label {
			return nil, nil, fmt.Errorf("feature '%s' cannot be used to predict itself", name)
		}
		featureList = append(featureList, f)
	}
	return label, featureList, nil
}
