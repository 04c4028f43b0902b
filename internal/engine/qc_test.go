package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNoObservation(t *testing.T) {
	c := NewClassifier(testRemoteSensing())

	qc := c.Classify(SupportStatus{Supported: false}, ResolvedIndices{})
	assert.Equal(t, SkipNoRemoteSensing, qc.Reason)
	assert.False(t, qc.CanopyReady)
}

func TestClassifyStaleBeforeCanopy(t *testing.T) {
	c := NewClassifier(testRemoteSensing()) // max age 5

	// High canopy readings that are too old are still untrustworthy.
	qc := c.Classify(
		SupportStatus{Supported: true, Age: 6},
		ResolvedIndices{NDVI: fp(0.9), EVI: fp(0.8)},
	)
	assert.Equal(t, SkipStale, qc.Reason)
	assert.False(t, qc.CanopyReady)
}

func TestClassifyCanopyEitherIndexClears(t *testing.T) {
	c := NewClassifier(testRemoteSensing()) // ndvi min 0.35, evi min 0.20
	sup := SupportStatus{Supported: true, Age: 2}

	// NDVI below its bar but EVI clears: canopy ready.
	qc := c.Classify(sup, ResolvedIndices{NDVI: fp(0.30), EVI: fp(0.25)})
	assert.Equal(t, SkipOK, qc.Reason)
	assert.True(t, qc.CanopyReady)

	// Neither clears.
	qc = c.Classify(sup, ResolvedIndices{NDVI: fp(0.30), EVI: fp(0.10)})
	assert.Equal(t, SkipLowCanopy, qc.Reason)
	assert.False(t, qc.CanopyReady)

	// Missing canopy indices count as not clearing.
	qc = c.Classify(sup, ResolvedIndices{NDMI: fp(0.5)})
	assert.Equal(t, SkipLowCanopy, qc.Reason)
}

func TestClassifyCanopyBoundary(t *testing.T) {
	c := NewClassifier(testRemoteSensing())
	sup := SupportStatus{Supported: true, Age: 0}

	// Exactly at the minimum clears the bar.
	qc := c.Classify(sup, ResolvedIndices{NDVI: fp(0.35)})
	assert.Equal(t, SkipOK, qc.Reason)

	// Exactly at max age is not stale.
	qc = c.Classify(SupportStatus{Supported: true, Age: 5},
		ResolvedIndices{NDVI: fp(0.35)})
	assert.Equal(t, SkipOK, qc.Reason)
}
