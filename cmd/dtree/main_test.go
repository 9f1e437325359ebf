package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnert/DecisionTree/feature"
)

func metadataFeatures() (*feature.Feature, *feature.Feature, *feature.Feature, []*feature.Feature) {
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	play := feature.New("play", []string{"yes", "no"})
	return outlook, humidity, play, []*feature.Feature{outlook, humidity, play}
}

func TestLabelAndFeatures(t *testing.T) {
	outlook, humidity, play, features := metadataFeatures()

	label, featureList, err := labelAndFeatures(features, "play", "")
	require.NoError(t, err)
	assert.Same(t, play, label)
	// Defaulting keeps every feature but the label, in metadata order.
	assert.Equal(t, []*feature.Feature{outlook, humidity}, featureList)
}

func TestLabelAndFeatures_ExplicitList(t *testing.T) {
	_, humidity, play, features := metadataFeatures()

	label, featureList, err := labelAndFeatures(features, "play", "humidity")
	require.NoError(t, err)
	assert.Same(t, play, label)
	assert.Equal(t, []*feature.Feature{humidity}, featureList)

	label, featureList, err = labelAndFeatures(features, "play", "humidity, outlook")
	require.NoError(t, err)
	assert.Same(t, play, label)
	require.Len(t, featureList, 2)
	assert.Equal(t, "humidity", featureList[0].Name())
	assert.Equal(t, "outlook", featureList[1].Name())
}

func TestLabelAndFeatures_UnknownLabel(t *testing.T) {
	_, _, _, features := metadataFeatures()

	_, _, err := labelAndFeatures(features, "temperature", "")
	assert.EqualError(t, err, "label feature 'temperature' is not defined")
}

func TestLabelAndFeatures_UnknownFeature(t *testing.T) {
	_, _, _, features := metadataFeatures()

	_, _, err := labelAndFeatures(features, "play", "outlook,temperature")
	assert.EqualError(t, err, "feature 'temperature' is not defined")
}

func TestLabelAndFeatures_LabelPredictingItself(t *testing.T) {
	_, _, _, features := metadataFeatures()

	_, _, err := labelAndFeatures(features, "play", "outlook,play")
	assert.EqualError(t, err, "feature 'play' cannot be used to predict itself")
}

func TestGrowCmdConfigValidate(t *testing.T) {
	config := &growCmdConfig{
		ioCmdConfig: &ioCmdConfig{rootCmdConfig: &rootCmdConfig{}, metadataInput: "metadata.yml"},
		label:       "play",
	}
	assert.NoError(t, config.Validate())

	config.metadataInput = ""
	assert.EqualError(t, config.Validate(), "required metadata flag was not set")

	config.metadataInput = "metadata.yml"
	config.label = ""
	assert.EqualError(t, config.Validate(), "required label flag was not set")

	config.label = "play"
	config.memoryIntensiveTable = true
	config.cpuIntensiveTable = true
	assert.EqualError(t, config.Validate(), "cannot set both memory-intensive and cpu-intensive flags at the same time")

	config.memoryIntensiveTable = false
	config.cpuIntensiveTable = false
	config.maxDepth = -1
	assert.EqualError(t, config.Validate(), "max-depth flag was set to an invalid value: it must be a non-negative integer")
}

func TestSplitCmdConfigValidate(t *testing.T) {
	config := &splitCmdConfig{metadataInput: "metadata.yml", splitOutput: "split.csv", splitProbability: 20}
	assert.NoError(t, config.Validate())

	config.splitProbability = 0
	assert.EqualError(t, config.Validate(), "split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")

	config.splitProbability = 101
	assert.EqualError(t, config.Validate(), "split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")

	config.splitProbability = 20
	config.splitOutput = ""
	assert.EqualError(t, config.Validate(), "required split-output flag was not set")

	config.splitOutput = "split.csv"
	config.metadataInput = ""
	assert.EqualError(t, config.Validate(), "required metadata flag was not set")
}
