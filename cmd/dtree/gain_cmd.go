package main

import (
	"fmt"
	"os"

	dtree "github.com/sonnert/DecisionTree"
	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/spf13/cobra"
)

type gainCmdConfig struct {
	*ioCmdConfig
	dataInput    string
	label        string
	featureNames string
}

func gainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &gainCmdConfig{ioCmdConfig: &ioCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "gain",
		Short: "Report entropies and information gains on a table",
		Long:  `Report the label entropy of a table of data along with the conditional entropy and information gain of every candidate feature`,
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
			t, err := config.inputTable(config.dataInput, features, "table")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			label, featureList, err := labelAndFeatures(features, config.label, config.featureNames)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			labelEntropy, err := dtree.LabelEntropy(config.Context(), t, label)
			if err != nil {
				fmt.Fprintf(os.Stderr, "computing label entropy: %v\n", err)
				os.Exit(6)
			}
			fmt.Printf("Features: %v\n", featureList)
			fmt.Printf("Label: '%s'\n", label.Name())
			fmt.Println("")
			fmt.Printf("Entropy for table: %v\n", labelEntropy)
			for _, f := range featureList {
				featureEntropy, err := dtree.FeatureEntropy(config.Context(), t, f, label)
				if err != nil {
					fmt.Fprintf(os.Stderr, "computing entropy for feature %s: %v\n", f.Name(), err)
					os.Exit(7)
				}
				fmt.Printf("Entropy for '%s': %v (gain %v)\n", f.Name(), featureEntropy, labelEntropy-featureEntropy)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis connection URL with the data to report on (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the feature the entropies and gains are computed against (required)")
	cmd.PersistentFlags().StringVar(&(config.featureNames), "features", "", "comma-separated names of the features to report on (defaults to all features but the label)")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveTable), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveTable), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *gainCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if gcc.cpuIntensiveTable && gcc.memoryIntensiveTable {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	return nil
}
