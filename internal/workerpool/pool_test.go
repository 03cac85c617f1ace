package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_CallsEveryIndexExactlyOnce(t *testing.T) {
	const n = 500
	var counts [n]int32
	Run(n, 4, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		assert.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestRunCollect_PreservesOrder(t *testing.T) {
	out := RunCollect(100, 8, func(i int) int { return i * i })
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestWorkers_CapsToItemCount(t *testing.T) {
	assert.Equal(t, 1, Workers(1, 16))
	assert.LessOrEqual(t, Workers(1000, 4), 4)
}
