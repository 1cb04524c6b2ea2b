// Static benchmark profile table: worst-case core requirements per
// (suite, benchmark, parallelism). Zero entries forbid a parallelism value.

package sched

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrProfileMissing is returned when no core requirement profile exists for a
// task descriptor.
var ErrProfileMissing = errors.New("benchmark profile missing")

// seq returns the inclusive integer range [from, to].
func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

// profileTables maps suite -> benchmark -> core requirement indexed by
// parallelism-1. A zero entry means the parallelism value is not supported
// for that benchmark.
var profileTables = map[string]map[string][]int{
	"parsec": {
		"blackscholes":  seq(2, 16),
		"bodytrack":     seq(3, 16),
		"canneal":       seq(2, 16),
		"dedup":         {4, 7, 10, 13, 16},
		"ferret":        {7, 11, 15},
		"fluidanimate":  {2, 3, 0, 5, 0, 0, 0, 9},
		"streamcluster": seq(2, 16),
		"swaptions":     seq(2, 16),
		"x264":          {1, 3, 4, 5, 6, 7, 8, 9},
	},
	"splash2": {
		"barnes":      seq(1, 16),
		"cholesky":    seq(1, 16),
		"fft":         {1, 2, 0, 4, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 16},
		"fmm":         seq(1, 16),
		"lu.cont":     seq(1, 16),
		"lu.ncont":    seq(1, 16),
		"ocean.cont":  {1, 2, 0, 4, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 16},
		"ocean.ncont": {1, 2, 0, 4, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 16},
		"radiosity":   seq(1, 16),
		"radix":       {1, 2, 0, 4, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 16},
		"raytrace":    seq(1, 16),
		"water.nsq":   seq(1, 16),
		"water.sp":    {1, 2, 0, 4, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 16},
	},
}

// CoreRequirement translates a task descriptor of the form
// "suite-benchmark-input-parallelism" into the number of cores the task
// occupies while active. It is a pure lookup: the same descriptor always
// yields the same requirement.
func CoreRequirement(name string) (int, error) {
	fields := strings.SplitN(name, "-", 4)
	if len(fields) != 4 {
		return 0, fmt.Errorf("%w: malformed task descriptor %q", ErrProfileMissing, name)
	}
	suite, benchmark := fields[0], fields[1]

	parallelism, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, fmt.Errorf("%w: bad parallelism in %q: %v", ErrProfileMissing, name, err)
	}
	if parallelism < 1 {
		return 0, fmt.Errorf("%w: can't find core requirement of %q (parallelism < 1)", ErrProfileMissing, name)
	}

	benchmarks, ok := profileTables[suite]
	if !ok {
		return 0, fmt.Errorf("%w: can't find core requirement of %q (only PARSEC and SPLASH2 are implemented)", ErrProfileMissing, name)
	}
	requirements, ok := benchmarks[benchmark]
	if !ok {
		return 0, fmt.Errorf("%w: can't find core requirement of %q", ErrProfileMissing, name)
	}
	if parallelism > len(requirements) {
		return 0, fmt.Errorf("%w: can't find core requirement of %q", ErrProfileMissing, name)
	}
	requirement := requirements[parallelism-1]
	if requirement == 0 {
		return 0, fmt.Errorf("%w: parallelism %d is not supported for %q", ErrProfileMissing, parallelism, name)
	}
	return requirement, nil
}
