package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeID(t *testing.T) {
	assert.Equal(t, "", EncodeID(0))
	assert.Equal(t, "", EncodeID(-5))
	assert.Equal(t, "1", EncodeID(1))
	assert.Equal(t, "A", EncodeID(10))
	assert.Equal(t, "z", EncodeID(61))
	// Least-significant digit first: 62 = 0*1 + 1*62.
	assert.Equal(t, "01", EncodeID(62))
	assert.Equal(t, "11", EncodeID(63))
}

func TestEncodeIDUnique(t *testing.T) {
	seen := make(map[string]int64)
	for id := int64(1); id <= 10000; id++ {
		code := EncodeID(id)
		if prev, ok := seen[code]; ok {
			t.Fatalf("ids %d and %d share code %q", prev, id, code)
		}
		seen[code] = id
	}
}

func TestPeriodBuckets(t *testing.T) {
	for _, p := range []Period{PeriodMinute, PeriodHour, PeriodDay, PeriodMonth, PeriodYear} {
		bucket, err := p.BucketSeconds()
		assert.NoError(t, err)
		assert.Positive(t, bucket)

		window, err := p.WindowSeconds()
		assert.NoError(t, err)
		assert.Equal(t, bucket, window)
	}

	_, err := Period("WEEK").BucketSeconds()
	assert.Error(t, err)
}
