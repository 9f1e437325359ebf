package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sonnert/DecisionTree/feature/yaml"
	"github.com/sonnert/DecisionTree/table"
	"github.com/sonnert/DecisionTree/table/csv"
	"github.com/spf13/cobra"
)

type splitCmdConfig struct {
	tableInput       string
	metadataInput    string
	tableOutput      string
	splitOutput      string
	splitProbability int
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a table into two tables",
		Long:  `Split a table into an output table and a split table`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			rootConfig.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			rootConfig.Logf("Features from metadata read")

			var outputFile *os.File
			if config.tableOutput != "" {
				rootConfig.Logf("Creating %s to dump output table...", config.tableOutput)
				outputFile, err = os.Create(config.tableOutput)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(3)
				}
				defer outputFile.Close()
			} else {
				rootConfig.Logf("Using STDOUT to dump output table...")
				outputFile = os.Stdout
			}
			rootConfig.Logf("Preparing to write output table...")
			output, err := csv.NewWriter(outputFile, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}

			var splitOutputFile *os.File
			rootConfig.Logf("Creating %s to dump split table...", config.splitOutput)
			splitOutputFile, err = os.Create(config.splitOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			defer splitOutputFile.Close()
			rootConfig.Logf("Preparing to write split output table...")
			splitOutput, err := csv.NewWriter(splitOutputFile, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}

			randomizer := rand.New(rand.NewSource(time.Now().UnixNano()))
			splitter := func(i int, r table.Row) (bool, error) {
				var err error
				if (100 * randomizer.Float32()) > float32(config.splitProbability) {
					_, err = output.Write(ctx, []table.Row{r})
				} else {
					_, err = splitOutput.Write(ctx, []table.Row{r})
				}
				if err != nil {
					return false, err
				}
				return true, nil
			}

			var f *os.File
			if config.tableInput == "" {
				rootConfig.Logf("Reading input table from STDIN and splitting it into output and split output tables...")
				f = os.Stdin
			} else {
				rootConfig.Logf("Opening %s to read input table...", config.tableInput)
				f, err = os.Open(config.tableInput)
				if err != nil {
					err = fmt.Errorf("reading input table from %s: %v", config.tableInput, err)
					fmt.Fprintln(os.Stderr, err)
					os.Exit(7)
				}
				rootConfig.Logf("Splitting input table into output and split output tables...")
			}
			defer f.Close()
			err = csv.ReadTableByRow(f, features, splitter)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			rootConfig.Logf("Flushing output table...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			rootConfig.Logf("Flushing split table...")
			err = splitOutput.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(10)
			}
			rootConfig.Logf("Done")
			rootConfig.Logf("Input table with %d rows was split into tables with %d and %d rows", output.Count()+splitOutput.Count(), output.Count(), splitOutput.Count())
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.tableInput), "input", "i", "", "path to an input CSV file with the table to split (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.tableOutput), "output", "o", "", "path to a file to dump the output table (defaults to STDOUT)")
	cmd.PersistentFlags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that a row of the table will be assigned to the split table")
	cmd.PersistentFlags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path to a file to dump the output of the split table (required)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}
