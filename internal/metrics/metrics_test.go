// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordExtraction(t *testing.T) {
	before := ExtractionsServed()
	uniqueBefore, _ := NamesObserved("unique")

	RecordExtraction(512, 3, 1, 2*time.Millisecond)

	assert.Equal(t, before+1, ExtractionsServed())

	uniqueAfter, uniqueSum := NamesObserved("unique")
	assert.Equal(t, uniqueBefore+1, uniqueAfter)
	assert.GreaterOrEqual(t, uniqueSum, 3.0)

	dupCount, _ := NamesObserved("duplicate")
	assert.NotZero(t, dupCount)
}

func TestRecordUploadRejected(t *testing.T) {
	before := UploadsRejected(ReasonTooLarge)
	RecordUploadRejected(ReasonTooLarge)
	assert.Equal(t, before+1, UploadsRejected(ReasonTooLarge))
}

func TestUnknownKindReadsZero(t *testing.T) {
	// Reading an unused label set must not panic; it creates an empty child.
	count, sum := NamesObserved("nonexistent")
	assert.Zero(t, count)
	assert.Zero(t, sum)
}
